// Package audioconv converts between on-disk audio formats and the mono
// 16 kHz float32 PCM the speech pipeline works in. Formats are picked by
// extension with a magic-byte fallback for mislabeled files.
package audioconv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

const targetRate = 16000

type Options struct {
	MaxSamples int
}

// DecodeFile reads a wav, mp3 or ogg (vorbis or opus) file and returns mono
// float32 PCM @ 16 kHz.
func DecodeFile(_ context.Context, path string, opt Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(f, opt)
	case ".mp3":
		return decodeMP3(f, opt)
	case ".ogg", ".oga":
		return decodeOgg(f, opt)
	}

	// extension told us nothing, sniff the container
	br := bufio.NewReader(f)
	magic, _ := br.Peek(4)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	switch string(magic) {
	case "RIFF":
		return decodeWAV(f, opt)
	case "OggS":
		return decodeOgg(f, opt)
	}
	return nil, fmt.Errorf("unsupported audio format: %s", path)
}

func decodeWAV(r io.ReadSeeker, opt Options) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if pb == nil || pb.Data == nil {
		return nil, errors.New("empty wav")
	}

	bd := int(dec.BitDepth)
	if bd == 0 {
		bd = 16
	}
	x := intToFloat32(pb.Data, bd)

	ch, sr := 1, 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			ch = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			sr = pb.Format.SampleRate
		}
	}
	return finish(x, ch, sr, opt), nil
}

func decodeMP3(r io.Reader, opt Options) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, err
	}
	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return nil, err
	}
	sr := dec.SampleRate()
	if sr <= 0 {
		sr = 44100
	}
	// the decoder always emits interleaved stereo
	return finish(int16ToFloat32(ints), 2, sr, opt), nil
}

func decodeOgg(r io.ReadSeeker, opt Options) ([]float32, error) {
	if x, err := decodeVorbis(r, opt); err == nil {
		return x, nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	x, err := decodeOpus(r, opt)
	if err != nil {
		return nil, fmt.Errorf("ogg is neither vorbis nor opus: %w", err)
	}
	return x, nil
}

func decodeVorbis(r io.Reader, opt Options) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid ogg/vorbis stream")
	}
	return finish(pcm, format.Channels, format.SampleRate, opt), nil
}

func decodeOpus(rs io.ReadSeeker, opt Options) ([]float32, error) {
	dec, err := popus.NewDecoder(rs)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	// opus always decodes at 48 kHz
	var pcm []float32
	buf := make([]int16, 48_000*ch/2)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm = append(pcm, int16ToFloat32(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return finish(pcm, ch, 48000, opt), nil
}

// finish downmixes, resamples to the target rate and applies the sample cap.
func finish(x []float32, channels, rate int, opt Options) []float32 {
	if channels > 1 {
		x = downmix(x, channels)
	}
	if rate != targetRate {
		x = Resample(x, rate, targetRate)
	}
	if opt.MaxSamples > 0 && len(x) > opt.MaxSamples {
		x = x[:opt.MaxSamples]
	}
	return x
}

func intToFloat32(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range data {
		f := float64(v) * scale
		if f > 1 {
			f = 1
		} else if f < -1 {
			f = -1
		}
		out[i] = float32(f)
	}
	return out
}

func int16ToFloat32(data []int16) []float32 {
	out := make([]float32, len(data))
	const scale = 1.0 / 32768.0
	for i, v := range data {
		out[i] = float32(float64(v) * scale)
	}
	return out
}

func downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += float64(in[base+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// Resample converts between sample rates with linear interpolation. Good
// enough for speech; nobody is mastering music through this.
func Resample(in []float32, inRate, outRate int) []float32 {
	if inRate == outRate || len(in) == 0 {
		return in
	}
	ratio := float64(outRate) / float64(inRate)
	n := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		src := float64(i) / ratio
		i0 := int(math.Floor(src))
		i1 := i0 + 1
		if i0 >= len(in) {
			out[i] = in[len(in)-1]
			continue
		}
		if i1 >= len(in) {
			out[i] = in[i0]
			continue
		}
		a := float32(src - float64(i0))
		out[i] = in[i0]*(1-a) + in[i1]*a
	}
	return out
}
