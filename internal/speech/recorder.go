package speech

import (
	"context"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate = 16000
	frameSize  = 320 // 20ms
)

// Recorder captures one utterance from the microphone with RMS-based
// endpointing: recording starts on the first loud frame and stops after the
// configured stretch of trailing silence.
type Recorder struct {
	deviceIndex int
}

func NewRecorder(deviceIndex int) *Recorder {
	return &Recorder{deviceIndex: deviceIndex}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

func (r *Recorder) openStream(buf []float32) (*portaudio.Stream, error) {
	if r.deviceIndex <= 0 {
		return portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	}
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if r.deviceIndex >= len(devs) {
		return portaudio.OpenDefaultStream(1, 0, sampleRate, len(buf), buf)
	}
	params := portaudio.LowLatencyParameters(devs[r.deviceIndex], nil)
	params.Input.Channels = 1
	params.SampleRate = sampleRate
	params.FramesPerBuffer = len(buf)
	return portaudio.OpenStream(params, buf)
}

// Record blocks until the caller stops talking, maxLength elapses, or ctx is
// cancelled. Mono float32 @ 16 kHz, ready for the transcriber.
func (r *Recorder) Record(ctx context.Context, silenceRMS float64, trailingSilence, maxLength time.Duration) ([]float32, error) {
	if maxLength <= 0 {
		maxLength = 20 * time.Second
	}
	if trailingSilence <= 0 {
		trailingSilence = 600 * time.Millisecond
	}
	if silenceRMS <= 0 {
		silenceRMS = 0.015
	}

	buf := make([]float32, frameSize)
	out := make([]float32, 0, sampleRate*3)

	stream, err := r.openStream(buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	var (
		speaking      bool
		silenceFrames int
	)
	silenceLimit := int(trailingSilence / (20 * time.Millisecond))
	maxFrames := int(maxLength/time.Second) * sampleRate / frameSize

	for i := 0; i < maxFrames; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, err
		}

		rms := frameRMS(buf)
		if rms > silenceRMS {
			speaking = true
			silenceFrames = 0
			out = append(out, buf...)
			continue
		}
		if speaking {
			silenceFrames++
			if silenceFrames >= silenceLimit {
				break
			}
			out = append(out, buf...)
		}
	}

	return out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}
