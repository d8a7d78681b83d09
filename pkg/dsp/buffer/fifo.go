// Package buffer provides the sample FIFO that decouples block rendering
// from an audio device callback.
package buffer

import (
	"errors"
	"math"
	"sync/atomic"
	"time"
)

// ErrOverrun is returned by Write when the FIFO cannot take the whole block.
var ErrOverrun = errors.New("buffer overrun: not enough space available")

// minCapacity keeps tiny latencies from producing a useless ring.
const minCapacity = 1024

// FIFO is a lock-free single-producer single-consumer ring of mono samples.
// It starts with latency worth of silence queued so the reader has headroom
// against scheduling and GC pauses on the writer side.
type FIFO struct {
	data []float32
	mask uint64

	readPos  atomic.Uint64
	writePos atomic.Uint64

	prefill    uint64
	sampleRate float64

	underruns atomic.Uint64
	overruns  atomic.Uint64
}

// Stats is a snapshot of FIFO health.
type Stats struct {
	Underruns uint64
	Overruns  uint64
	Fill      float32 // fraction of capacity holding unread samples
	Latency   time.Duration
}

// NewFIFO creates a FIFO for sampleRate that holds four times latency.
func NewFIFO(sampleRate float64, latency time.Duration) *FIFO {
	prefill := uint64(math.Round(latency.Seconds() * sampleRate))
	size := nextPowerOf2(max(prefill*4, minCapacity))

	f := &FIFO{
		data:       make([]float32, size),
		mask:       size - 1,
		prefill:    prefill,
		sampleRate: sampleRate,
	}
	f.writePos.Store(prefill)
	return f
}

// Write queues samples. The block is taken whole or not at all. Only the
// producer goroutine may call Write.
func (f *FIFO) Write(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	writePos := f.writePos.Load()
	readPos := f.readPos.Load()
	if f.capacity()-(writePos-readPos) < uint64(len(samples)) {
		f.overruns.Add(1)
		return ErrOverrun
	}

	for len(samples) > 0 {
		idx := writePos & f.mask
		n := copy(f.data[idx:], samples)
		samples = samples[n:]
		writePos += uint64(n)
	}

	f.writePos.Store(writePos)
	return nil
}

// Read dequeues up to len(out) samples and returns how many were real.
// The rest of out is zeroed and counted as an underrun. Only the consumer
// goroutine may call Read.
func (f *FIFO) Read(out []float32) int {
	if len(out) == 0 {
		return 0
	}

	readPos := f.readPos.Load()
	writePos := f.writePos.Load()

	toRead := min(uint64(len(out)), writePos-readPos)
	dst := out[:toRead]
	for len(dst) > 0 {
		idx := readPos & f.mask
		n := copy(dst, f.data[idx:])
		dst = dst[n:]
		readPos += uint64(n)
	}
	f.readPos.Store(readPos)

	if toRead < uint64(len(out)) {
		clear(out[toRead:])
		f.underruns.Add(1)
	}
	return int(toRead)
}

// Buffered returns the number of unread samples.
func (f *FIFO) Buffered() int {
	return int(f.writePos.Load() - f.readPos.Load())
}

// Free returns how many samples Write can take right now.
func (f *FIFO) Free() int {
	return int(f.capacity()) - f.Buffered()
}

// Cap returns the ring size in samples.
func (f *FIFO) Cap() int {
	return len(f.data)
}

// Latency returns how long the buffered samples take to play.
func (f *FIFO) Latency() time.Duration {
	return time.Duration(float64(f.Buffered()) / f.sampleRate * float64(time.Second))
}

// Stats returns current counters.
func (f *FIFO) Stats() Stats {
	return Stats{
		Underruns: f.underruns.Load(),
		Overruns:  f.overruns.Load(),
		Fill:      float32(f.Buffered()) / float32(f.capacity()),
		Latency:   f.Latency(),
	}
}

// Reset empties the ring, queues the initial silence again and clears the
// counters. Neither side may be running.
func (f *FIFO) Reset() {
	clear(f.data)
	f.readPos.Store(0)
	f.writePos.Store(f.prefill)
	f.underruns.Store(0)
	f.overruns.Store(0)
}

func (f *FIFO) capacity() uint64 {
	return uint64(len(f.data))
}

// nextPowerOf2 rounds n up to a power of two.
func nextPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
