package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"

	"github.com/justyntemme/dod250go/pkg/dsp/buffer"
	"github.com/justyntemme/dod250go/pkg/framework/debug"
)

// DefaultLatency is the silence queued ahead of the first rendered block.
const DefaultLatency = 50 * time.Millisecond

// Player owns the audio device and the FIFO feeding it.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	fifo   *buffer.FIFO

	sampleRate int
	cancel     context.CancelFunc
	done       chan error

	mu      sync.Mutex
	started bool
	log     *logrus.Entry
}

// NewPlayer opens the default device for mono float32 output.
func NewPlayer(sampleRate int, latency time.Duration) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	return &Player{
		ctx:        ctx,
		fifo:       buffer.NewFIFO(float64(sampleRate), latency),
		sampleRate: sampleRate,
		log:        debug.WithField("component", "playback"),
	}, nil
}

// Start renders blocks through render on a background goroutine and plays
// them. Calling Start twice does nothing.
func (p *Player) Start(blockSize int, render RenderFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() {
		p.done <- Pump(ctx, p.fifo, blockSize, float64(p.sampleRate), render)
	}()

	p.player = p.ctx.NewPlayer(NewReader(p.fifo))
	p.player.Play()
	p.started = true

	p.log.WithFields(logrus.Fields{
		"sample_rate": p.sampleRate,
		"block_size":  blockSize,
		"latency":     p.fifo.Latency(),
	}).Debug("playback started")
}

// Stats returns the FIFO health counters.
func (p *Player) Stats() buffer.Stats {
	return p.fifo.Stats()
}

// Close stops rendering and releases the device player. The render
// function is no longer called once Close returns.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	p.started = false

	p.cancel()
	<-p.done

	stats := p.fifo.Stats()
	p.log.WithFields(logrus.Fields{
		"underruns": stats.Underruns,
		"overruns":  stats.Overruns,
	}).Debug("playback stopped")

	return p.player.Close()
}
