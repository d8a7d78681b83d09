// Package utility provides common DSP utility functions and processors.
package utility

import "math"

// DCBlocker removes DC offset from a mono signal.
// First-order high-pass: y[n] = x[n] - x[n-1] + R * y[n-1]
type DCBlocker struct {
	x1, y1      float32
	coefficient float32
}

// NewDCBlocker creates a DC blocker. The cutoff frequency is typically around 5-20 Hz.
func NewDCBlocker(cutoffHz float32, sampleRate float64) *DCBlocker {
	dc := &DCBlocker{}
	dc.SetCutoff(cutoffHz, sampleRate)
	return dc
}

// SetCutoff updates the cutoff frequency.
func (dc *DCBlocker) SetCutoff(cutoffHz float32, sampleRate float64) {
	R := float32(1.0 - (2.0 * math.Pi * float64(cutoffHz) / sampleRate))

	// Clamp R to ensure stability
	if R < 0.9 {
		R = 0.9
	}
	if R > 0.9999 {
		R = 0.9999
	}

	dc.coefficient = R
}

// ProcessSample removes DC from a single sample.
func (dc *DCBlocker) ProcessSample(input float32) float32 {
	output := input - dc.x1 + dc.coefficient*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

// Process removes DC offset from a buffer in-place.
func (dc *DCBlocker) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] = dc.ProcessSample(buffer[i])
	}
}

// Reset clears the state.
func (dc *DCBlocker) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
