package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// callCenterPrompt biases decoding toward the vocabulary callers actually
// use, which noticeably helps with package names and digits.
const callCenterPrompt = "Telefon numarası, fatura, paket, kalan dakika, SMS, internet, borç, iptal, kampanya, arıza, sim kart şifresi."

// Transcriber wraps a loaded whisper.cpp model. One model, many calls;
// each Transcribe gets its own decoding context.
type Transcriber struct {
	model    whisper.Model
	language string
}

func NewTranscriber(modelPath, language string) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if language == "" {
		language = "tr"
	}
	return &Transcriber{model: m, language: language}, nil
}

func (t *Transcriber) Close() error {
	if t.model == nil {
		return nil
	}
	return t.model.Close()
}

// Transcribe runs the model over one utterance. pcm must be mono @ 16 kHz,
// float32 in [-1, 1].
func (t *Transcriber) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	if t.model == nil {
		return "", errors.New("nil model")
	}
	if len(pcm) == 0 {
		return "", errors.New("no audio samples provided")
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("new context: %w", err)
	}
	if err := wctx.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))
	wctx.SetInitialPrompt(callCenterPrompt)

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("process: %w", err)
	}

	var parts []string
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		parts = append(parts, strings.TrimSpace(s.Text))
	}

	return strings.Join(parts, " "), nil
}
