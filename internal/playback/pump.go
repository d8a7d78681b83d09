package playback

import (
	"context"
	"errors"
	"time"

	"github.com/justyntemme/dod250go/pkg/dsp/buffer"
)

// RenderFunc fills block with the next processed samples.
type RenderFunc func(block []float32)

// Pump renders blocks into fifo whenever there is room, until ctx is done.
// It returns the context's error.
func Pump(ctx context.Context, fifo *buffer.FIFO, blockSize int, sampleRate float64, render RenderFunc) error {
	block := make([]float32, blockSize)
	idle := time.Duration(float64(blockSize) / sampleRate * float64(time.Second) / 2)
	idle = max(idle, time.Millisecond)

	ticker := time.NewTicker(idle)
	defer ticker.Stop()

	for {
		for fifo.Free() >= blockSize {
			render(block)
			if err := fifo.Write(block); err != nil && !errors.Is(err, buffer.ErrOverrun) {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
