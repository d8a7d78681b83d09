// Package analysis provides signal meters for displays.
package analysis

import (
	"math"
	"sync/atomic"

	"github.com/justyntemme/dod250go/pkg/dsp/gain"
)

// PeakMeter tracks a decaying peak and a held maximum. Process runs on the
// audio goroutine; the getters may be called from any goroutine.
type PeakMeter struct {
	sampleRate float64
	holdTime   float64 // seconds
	decayRate  float64 // dB per second

	peak      float64
	hold      float64
	holdCount int

	peakBits atomic.Uint64
	holdBits atomic.Uint64
}

// NewPeakMeter creates a meter with a 1.5 s hold and 20 dB/s decay.
func NewPeakMeter(sampleRate float64) *PeakMeter {
	return &PeakMeter{
		sampleRate: sampleRate,
		holdTime:   1.5,
		decayRate:  20,
	}
}

// SetHoldTime sets the peak hold time in seconds.
func (pm *PeakMeter) SetHoldTime(seconds float64) {
	pm.holdTime = seconds
}

// SetDecayRate sets the peak fall-off in dB per second.
func (pm *PeakMeter) SetDecayRate(dbPerSecond float64) {
	pm.decayRate = dbPerSecond
}

// Process feeds one block.
func (pm *PeakMeter) Process(samples []float32) {
	blockPeak := float64(gain.Peak(samples))

	fall := pm.decayRate * float64(len(samples)) / pm.sampleRate
	pm.peak *= gain.DbToLinear(-fall)
	pm.peak = math.Max(pm.peak, blockPeak)

	if blockPeak >= pm.hold {
		pm.hold = blockPeak
		pm.holdCount = int(pm.holdTime * pm.sampleRate)
	} else {
		pm.holdCount -= len(samples)
		if pm.holdCount <= 0 {
			pm.hold = pm.peak
			pm.holdCount = 0
		}
	}

	pm.peakBits.Store(math.Float64bits(pm.peak))
	pm.holdBits.Store(math.Float64bits(pm.hold))
}

// Peak returns the decaying peak, linear.
func (pm *PeakMeter) Peak() float64 {
	return math.Float64frombits(pm.peakBits.Load())
}

// PeakDB returns the decaying peak in dB.
func (pm *PeakMeter) PeakDB() float64 {
	return gain.LinearToDb(pm.Peak())
}

// Hold returns the held maximum, linear.
func (pm *PeakMeter) Hold() float64 {
	return math.Float64frombits(pm.holdBits.Load())
}

// HoldDB returns the held maximum in dB.
func (pm *PeakMeter) HoldDB() float64 {
	return gain.LinearToDb(pm.Hold())
}

// Reset clears the meter. Not safe while Process runs.
func (pm *PeakMeter) Reset() {
	pm.peak, pm.hold, pm.holdCount = 0, 0, 0
	pm.peakBits.Store(0)
	pm.holdBits.Store(0)
}
