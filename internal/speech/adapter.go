// Package speech is the audio boundary of the call loop: microphone capture
// with silence endpointing, whisper.cpp transcription, and OpenAI speech
// synthesis with local playback.
package speech

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"santral/internal/config"
	"santral/internal/notify"
)

// Adapter implements the call loop's Listen/Speak pair on real audio
// hardware.
type Adapter struct {
	rec     *Recorder
	stt     *Transcriber
	tts     *Synthesizer
	chime   *notify.Chime
	ducker  *Ducker
	profile config.VoiceProfile
}

func NewAdapter(rec *Recorder, stt *Transcriber, tts *Synthesizer, chime *notify.Chime, profile config.VoiceProfile) *Adapter {
	a := &Adapter{
		rec:     rec,
		stt:     stt,
		tts:     tts,
		chime:   chime,
		profile: profile,
	}
	if profile.DuckBackground {
		a.ducker = NewDucker([]string{"santral"}, 20)
	}
	return a
}

// Listen chimes, records one utterance and transcribes it.
func (a *Adapter) Listen(ctx context.Context) (string, error) {
	if a.chime != nil {
		if err := a.chime.Play(); err != nil {
			log.Warn("Chime failed", "err", err)
		}
	}

	pcm, err := a.rec.Record(ctx, a.profile.SessizlikEsigi, a.profile.SessizlikSuresi, a.profile.DinlemeTimeout)
	if err != nil {
		return "", fmt.Errorf("record: %w", err)
	}
	log.Debug("Recorded", "samples", len(pcm))

	text, err := a.stt.Transcribe(ctx, pcm)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	log.Debug("Transcribed", "text", text)
	return text, nil
}

// Speak ducks background audio, voices the line and restores volumes.
// Duck failures are logged, not fatal; a muted desktop must not kill a call.
func (a *Adapter) Speak(ctx context.Context, text string) error {
	if a.ducker != nil {
		if err := a.ducker.Lower(ctx, 0.3, 200*time.Millisecond); err != nil {
			log.Warn("Duck failed", "err", err)
		}
		defer func() {
			if err := a.ducker.Restore(ctx, 200*time.Millisecond); err != nil {
				log.Warn("Unduck failed", "err", err)
			}
		}()
	}
	return a.tts.Speak(ctx, text)
}
