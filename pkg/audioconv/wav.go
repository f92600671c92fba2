package audioconv

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV16k writes mono float32 PCM @ 16 kHz as a 16-bit wav file.
func WriteWAV16k(path string, pcm []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, targetRate, 16, 1, 1)

	data := make([]int, len(pcm))
	for i, v := range pcm {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		data[i] = int(v * 32767)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: targetRate},
		SourceBitDepth: 16,
		Data:           data,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
