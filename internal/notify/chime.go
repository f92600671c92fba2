// Package notify plays the short attention chime before the microphone
// opens, so callers know when to start talking.
package notify

import (
	"fmt"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

type Chime struct {
	path string
}

func NewChime(path string) *Chime {
	return &Chime{path: path}
}

// Play blocks until the chime finishes.
func (c *Chime) Play() error {
	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("open chime: %w", err)
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		return fmt.Errorf("decode chime: %w", err)
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
