// Package wavio reads and writes mono float clips as PCM WAV files.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	ErrNotWAV              = errors.New("not a WAV file")
	ErrUnsupportedFormat   = errors.New("unsupported WAV format")
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
)

// DefaultBitDepth is used when writing a clip without one.
const DefaultBitDepth = 16

const pcmFormat = 1

// Clip is a mono signal in the -1..1 range.
type Clip struct {
	Samples    []float32
	SampleRate int
	BitDepth   int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Read loads a WAV file and mixes it down to mono.
func Read(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	clip, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// Decode reads a 16, 24 or 32 bit PCM WAV stream and mixes it down to mono.
func Decode(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}
	if dec.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	depth := int(dec.BitDepth)
	if depth != 16 && depth != 24 && depth != 32 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	channels := max(1, int(dec.NumChans))
	scale := 1 / math.Pow(2, float64(depth-1))
	samples := make([]float32, len(buf.Data)/channels)
	for i := range samples {
		var sum int
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c]
		}
		samples[i] = float32(float64(sum) / float64(channels) * scale)
	}

	return &Clip{
		Samples:    samples,
		SampleRate: int(dec.SampleRate),
		BitDepth:   depth,
	}, nil
}

// Write stores clip as a mono PCM WAV file. Samples outside -1..1 are
// clipped.
func Write(path string, clip *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, clip); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Encode writes clip as a mono PCM WAV stream.
func Encode(w io.WriteSeeker, clip *Clip) error {
	depth := clip.BitDepth
	if depth == 0 {
		depth = DefaultBitDepth
	}
	if depth != 16 && depth != 24 && depth != 32 {
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}

	full := math.Pow(2, float64(depth-1))
	data := make([]int, len(clip.Samples))
	for i, v := range clip.Samples {
		s := math.Round(float64(v) * full)
		data[i] = int(math.Max(-full, math.Min(full-1, s)))
	}

	enc := wav.NewEncoder(w, clip.SampleRate, depth, 1, pcmFormat)
	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: clip.SampleRate},
		Data:           data,
		SourceBitDepth: depth,
	})
	if err != nil {
		return err
	}
	return enc.Close()
}
