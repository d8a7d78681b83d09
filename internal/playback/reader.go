// Package playback streams rendered blocks to the default audio device.
package playback

import (
	"encoding/binary"
	"math"

	"github.com/justyntemme/dod250go/pkg/dsp/buffer"
)

// bytesPerSample for mono float32 little endian frames.
const bytesPerSample = 4

// Reader drains a FIFO as little endian float32 bytes. Missing samples are
// played as silence so the device never stalls.
type Reader struct {
	fifo    *buffer.FIFO
	scratch []float32
}

// NewReader reads from fifo.
func NewReader(fifo *buffer.FIFO) *Reader {
	return &Reader{
		fifo:    fifo,
		scratch: make([]float32, 1024),
	}
}

// Read implements io.Reader. It always fills whole samples and never
// returns an error.
func (r *Reader) Read(p []byte) (int, error) {
	n := len(p) / bytesPerSample
	if len(r.scratch) < n {
		r.scratch = make([]float32, n)
	}
	samples := r.scratch[:n]
	r.fifo.Read(samples)

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(v))
	}
	return n * bytesPerSample, nil
}
