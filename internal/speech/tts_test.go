package speech

import (
	"testing"

	openai "github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
)

func TestFormatFor(t *testing.T) {
	cases := []struct {
		name     string
		response openai.AudioSpeechNewParamsResponseFormat
		ext      string
	}{
		{"mp3", openai.AudioSpeechNewParamsResponseFormatMP3, ".mp3"},
		{"wav", openai.AudioSpeechNewParamsResponseFormatWAV, ".wav"},
		{"WAV", openai.AudioSpeechNewParamsResponseFormatWAV, ".wav"},
		{"ogg", openai.AudioSpeechNewParamsResponseFormatOpus, ".ogg"},
		{"opus", openai.AudioSpeechNewParamsResponseFormatOpus, ".ogg"},
		{"", openai.AudioSpeechNewParamsResponseFormatMP3, ".mp3"},
		{"flac", openai.AudioSpeechNewParamsResponseFormatMP3, ".mp3"},
	}
	for _, c := range cases {
		f := formatFor(c.name)
		assert.Equal(t, c.response, f.response, "format %q", c.name)
		assert.Equal(t, c.ext, f.ext, "format %q", c.name)
	}
}

func TestSynthesizerUsesConfiguredFormat(t *testing.T) {
	s := NewSynthesizer(openai.Client{}, "alloy", "wav", "")
	assert.Equal(t, openai.AudioSpeechNewParamsResponseFormatWAV, s.format.response)
	assert.Equal(t, ".wav", s.format.ext)
}

func TestPCMStreamerDrains(t *testing.T) {
	p := &pcmStreamer{samples: []float32{0.5, -0.5, 0.25}}

	buf := make([][2]float64, 2)
	n, ok := p.Stream(buf)
	assert.Equal(t, 2, n)
	assert.True(t, ok)
	assert.Equal(t, [2]float64{0.5, 0.5}, buf[0])

	n, ok = p.Stream(buf)
	assert.Equal(t, 1, n)
	assert.True(t, ok)

	n, ok = p.Stream(buf)
	assert.Equal(t, 0, n)
	assert.False(t, ok)
	assert.NoError(t, p.Err())
}
