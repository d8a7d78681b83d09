// Package dod250 is a mono overdrive kernel modelled on the DOD 250 pedal.
//
// Signal path: DC blocker, op-amp gain stage, diode clipper, post lowpass,
// smoothed output level.
package dod250

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/justyntemme/dod250go/pkg/dsp/distortion"
	"github.com/justyntemme/dod250go/pkg/dsp/filter"
	"github.com/justyntemme/dod250go/pkg/dsp/gain"
	"github.com/justyntemme/dod250go/pkg/dsp/utility"
	"github.com/justyntemme/dod250go/pkg/framework/dsp"
	"github.com/justyntemme/dod250go/pkg/framework/param"
)

// Circuit constants
const (
	dcCutoffHz       = 10.0
	gainCornerHz     = 720.0 // op-amp feedback network corner
	minDrive         = 1.0
	maxDrive         = 100.0
	clipThreshold    = 0.5
	toneCutoffHz     = 6000.0
	toneQ            = 0.707
	minLevelDB       = -30.0
	maxLevelDB       = 6.0
	levelSmoothingMs = 20.0

	// Work buffers hold this many samples; longer blocks are processed in
	// chunks.
	chunkSize = 256

	fallbackRate = 48000
)

// Default control values, normalized
const (
	DefaultLevel = 0.5
	DefaultGain  = 0.5
)

// Kernel is the DOD 250 overdrive. It implements kernel.Kernel,
// kernel.Activator and kernel.PortConnector.
type Kernel struct {
	sampleRate uint32

	level *float32
	gain  *float32

	dc      *utility.DCBlocker
	stage   *gainStage
	clipper *distortion.Clipper
	tone    *filter.Biquad
	chain   *dsp.Chain

	levelSmoother *param.Smoother
	work          []float64
	gains         []float64
}

// New creates a kernel at the fallback rate; the host sets the real rate
// before processing.
func New() *Kernel {
	k := &Kernel{
		stage:         &gainStage{hp: &filter.OnePole{}, drive: minDrive},
		clipper:       distortion.NewClipper(distortion.CurveDiode, clipThreshold),
		tone:          filter.NewBiquad(),
		levelSmoother: param.NewSmoother(param.LinearSmoothing, 1),
	}
	k.dc = utility.NewDCBlocker(dcCutoffHz, fallbackRate)
	k.chain = dsp.NewChain("dod250").
		Add("dc", k.dc).
		Add("gain", k.stage).
		Add("clip", k.clipper).
		Add("tone", k.tone)
	k.SetSampleRate(fallbackRate)
	return k
}

// SetSampleRate designs every filter for rate. Zero selects 48 kHz.
func (k *Kernel) SetSampleRate(rate uint32) {
	if rate == 0 {
		rate = fallbackRate
	}
	k.sampleRate = rate
	fs := float64(rate)

	k.dc.SetCutoff(dcCutoffHz, fs)
	k.stage.hp.SetFrequency(fs, gainCornerHz)
	k.tone.SetLowpass(fs, math.Min(toneCutoffHz, 0.45*fs), toneQ)
	k.levelSmoother.SetTime(fs, levelSmoothingMs)
	k.levelSmoother.Reset(levelGain(k.levelValue()))
}

// SampleRate returns the rate the filters are designed for.
func (k *Kernel) SampleRate() uint32 {
	return k.sampleRate
}

// ConnectPort binds the level and gain control cells. Other ports are
// handled by the adapter and ignored here. A nil or non-*float32 value
// unbinds the port, which then reads its default.
func (k *Kernel) ConnectPort(port uint32, data any) {
	cell, _ := data.(*float32)
	switch port {
	case PortLevel:
		k.level = cell
	case PortGain:
		k.gain = cell
	}
}

// Activate allocates the work buffers on start and frees them on stop.
// Both directions are idempotent.
func (k *Kernel) Activate(start bool) {
	if !start {
		k.work, k.gains = nil, nil
		return
	}
	if k.work == nil {
		k.work = make([]float64, chunkSize)
		k.gains = make([]float64, chunkSize)
	}
}

// Active reports whether work buffers are allocated.
func (k *Kernel) Active() bool {
	return k.work != nil
}

// ClearState drops all signal history. The level jumps to its current
// control value.
func (k *Kernel) ClearState() {
	k.chain.Reset()
	k.levelSmoother.Reset(levelGain(k.levelValue()))
}

// ProcessBlock runs the overdrive over in and writes out. in and out may
// alias. Never allocates.
func (k *Kernel) ProcessBlock(in, out []float32) {
	if len(out) == 0 {
		return
	}
	if len(in) > 0 && &in[0] != &out[0] {
		copy(out, in)
	}

	k.stage.drive = gain.MapLog(k.gainValue(), minDrive, maxDrive)
	k.levelSmoother.SetTarget(levelGain(k.levelValue()))

	k.chain.Process(out)
	k.applyLevel(out)
}

// applyLevel multiplies buf by the smoothed level curve.
func (k *Kernel) applyLevel(buf []float32) {
	if k.work == nil {
		// Not activated: same result without the vector path.
		for i := range buf {
			buf[i] *= float32(k.levelSmoother.Next())
		}
		return
	}

	for start := 0; start < len(buf); start += chunkSize {
		chunk := buf[start:min(start+chunkSize, len(buf))]
		work := k.work[:len(chunk)]
		gains := k.gains[:len(chunk)]

		for i, v := range chunk {
			work[i] = float64(v)
		}
		k.levelSmoother.Fill(gains)
		vecmath.MulBlockInPlace(work, gains)
		for i, v := range work {
			chunk[i] = float32(v)
		}
	}
}

func (k *Kernel) levelValue() float64 {
	return controlValue(k.level, DefaultLevel)
}

func (k *Kernel) gainValue() float64 {
	return controlValue(k.gain, DefaultGain)
}

// controlValue reads a bound cell, clamped to 0..1.
func controlValue(cell *float32, def float64) float64 {
	if cell == nil {
		return def
	}
	v := float64(*cell)
	if math.IsNaN(v) {
		return def
	}
	return math.Max(0, math.Min(1, v))
}

// levelGain maps a normalized level onto a linear output gain.
func levelGain(level float64) float64 {
	return gain.DbToLinear(gain.MapLinear(level, minLevelDB, maxLevelDB))
}

// gainStage is a non-inverting op-amp stage whose feedback capacitor makes
// the gain apply above gainCornerHz only: y = x + (drive-1)*HP(x).
type gainStage struct {
	hp    *filter.OnePole
	drive float64
}

func (g *gainStage) Process(buffer []float32) {
	boost := float32(g.drive - 1)
	for i, x := range buffer {
		buffer[i] = x + boost*g.hp.Highpass(x)
	}
}

func (g *gainStage) Reset() {
	g.hp.Reset()
}
