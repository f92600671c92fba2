package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	beepwav "github.com/faiface/beep/wav"
	openai "github.com/openai/openai-go/v3"

	"santral/pkg/audioconv"
)

// Synthesizer turns agent lines into audible speech through the OpenAI
// speech endpoint. Audio lands in a temp file, is played back, optionally
// archived as 16 kHz wav, and the temp file is always removed.
type Synthesizer struct {
	client     openai.Client
	voice      string
	format     ttsFormat
	archiveDir string
}

// ttsFormat binds a synthesis response format to the file extension the
// decoders key on.
type ttsFormat struct {
	response openai.AudioSpeechNewParamsResponseFormat
	ext      string
}

// formatFor maps a config format name to its wire format. Anything
// unrecognized falls back to mp3.
func formatFor(name string) ttsFormat {
	switch strings.ToLower(name) {
	case "wav":
		return ttsFormat{openai.AudioSpeechNewParamsResponseFormatWAV, ".wav"}
	case "ogg", "opus":
		return ttsFormat{openai.AudioSpeechNewParamsResponseFormatOpus, ".ogg"}
	default:
		return ttsFormat{openai.AudioSpeechNewParamsResponseFormatMP3, ".mp3"}
	}
}

func NewSynthesizer(client openai.Client, voice, format, archiveDir string) *Synthesizer {
	if voice == "" {
		voice = "alloy"
	}
	return &Synthesizer{
		client:     client,
		voice:      voice,
		format:     formatFor(format),
		archiveDir: archiveDir,
	}
}

func (s *Synthesizer) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	path, err := s.synthesize(ctx, text)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	if err := play(ctx, path); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	if s.archiveDir != "" {
		if err := s.archive(ctx, path); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
	}
	return nil
}

func (s *Synthesizer) synthesize(ctx context.Context, text string) (string, error) {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		Input:          text,
		ResponseFormat: s.format.response,
	})
	if err != nil {
		return "", fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp("", "santral-tts-*"+s.format.ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (s *Synthesizer) archive(ctx context.Context, srcPath string) error {
	pcm, err := audioconv.DecodeFile(ctx, srcPath, audioconv.Options{})
	if err != nil {
		return err
	}
	name := fmt.Sprintf("tts-%d.wav", time.Now().UnixNano())
	return audioconv.WriteWAV16k(filepath.Join(s.archiveDir, name), pcm)
}

func play(ctx context.Context, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg", ".oga":
		return playOgg(ctx, path)
	default:
		return playBeep(path)
	}
}

// playBeep handles the container formats beep decodes natively.
func playBeep(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		streamer, format, err = beepwav.Decode(f)
	} else {
		streamer, format, err = mp3.Decode(f)
	}
	if err != nil {
		return err
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	return playAndWait(streamer)
}

// playOgg routes ogg-opus through the shared decoder, which hands back
// mono PCM at 16 kHz.
func playOgg(ctx context.Context, path string) error {
	pcm, err := audioconv.DecodeFile(ctx, path, audioconv.Options{})
	if err != nil {
		return err
	}
	const rate = beep.SampleRate(16000)
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return err
	}
	return playAndWait(&pcmStreamer{samples: pcm})
}

func playAndWait(streamer beep.Streamer) error {
	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}

// pcmStreamer adapts mono float32 PCM to the speaker.
type pcmStreamer struct {
	samples []float32
	pos     int
}

func (p *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	if p.pos >= len(p.samples) {
		return 0, false
	}
	n := 0
	for i := range samples {
		if p.pos >= len(p.samples) {
			break
		}
		v := float64(p.samples[p.pos])
		samples[i][0], samples[i][1] = v, v
		p.pos++
		n++
	}
	return n, true
}

func (p *pcmStreamer) Err() error { return nil }
