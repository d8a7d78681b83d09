package main

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/justyntemme/dod250go/internal/ui"
	"github.com/justyntemme/dod250go/internal/wavio"
	"github.com/justyntemme/dod250go/pkg/dsp/analysis"
	"github.com/justyntemme/dod250go/pkg/dsp/buffer"
	"github.com/justyntemme/dod250go/pkg/framework/bypass"
	"github.com/justyntemme/dod250go/pkg/host"
)

// engine loops a clip through a host for live playback. render runs on the
// playback goroutine; the ui.Controller methods run on the UI goroutine and
// only touch atomics and the host's parameter table.
type engine struct {
	host       *host.Host
	clip       *wavio.Clip
	presetPath string
	stats      func() buffer.Stats
	meter      *analysis.PeakMeter

	// playback goroutine only
	pos int
	in  []float32

	state    atomic.Int32
	rampGain atomic.Uint32
	played   atomic.Int64
}

func newEngine(h *host.Host, clip *wavio.Clip, presetPath string) *engine {
	e := &engine{
		host:       h,
		clip:       clip,
		presetPath: presetPath,
		in:         make([]float32, h.BlockSize()),
		meter:      analysis.NewPeakMeter(h.SampleRate()),
	}
	e.publish(nil)
	return e
}

// render fills block with the next processed samples, looping the clip.
func (e *engine) render(block []float32) {
	in := e.in[:len(block)]
	if len(e.clip.Samples) == 0 {
		clear(in)
	} else {
		for i := range in {
			in[i] = e.clip.Samples[e.pos]
			e.pos++
			if e.pos == len(e.clip.Samples) {
				e.pos = 0
			}
		}
	}

	e.host.Process(in, block)
	e.played.Add(int64(len(block)))
	e.publish(block)
}

func (e *engine) publish(block []float32) {
	ramp := e.host.Instance().Ramp()
	e.state.Store(int32(ramp.State()))
	e.rampGain.Store(math.Float32bits(ramp.Gain()))
	if len(block) > 0 {
		e.meter.Process(block)
	}
}

// ToggleBypass implements ui.Controller.
func (e *engine) ToggleBypass() (bool, error) {
	return e.host.ToggleBypass()
}

// SavePreset implements ui.Controller.
func (e *engine) SavePreset() (string, error) {
	return e.presetPath, e.host.SavePreset(e.presetPath)
}

// Status implements ui.Controller.
func (e *engine) Status() ui.Status {
	s := ui.Status{
		State:    bypass.State(e.state.Load()),
		Gain:     math.Float32frombits(e.rampGain.Load()),
		Position: e.position(),
		Peak:     float32(e.meter.Peak()),
		Hold:     float32(e.meter.Hold()),
		Load:     e.host.Profiler().Load(),
	}
	if p := e.host.Ports().Bypass(); p != nil {
		s.Bypass = p.GetValue() >= 0.5
	}
	if e.stats != nil {
		s.Underruns = e.stats().Underruns
	}
	return s
}

// position is the playback point within the clip.
func (e *engine) position() time.Duration {
	n := len(e.clip.Samples)
	if n == 0 || e.clip.SampleRate == 0 {
		return 0
	}
	played := e.played.Load() % int64(n)
	return time.Duration(played) * time.Second / time.Duration(e.clip.SampleRate)
}
