// Package distortion provides waveshaping stages for overdrive kernels.
package distortion

import (
	"math"
)

// CurveType represents different clipping transfer functions
type CurveType int

const (
	// CurveHardClip clips the signal at the threshold
	CurveHardClip CurveType = iota
	// CurveSoftClip applies soft clipping using tanh
	CurveSoftClip
	// CurveDiode models a pair of anti-parallel silicon diodes to ground
	CurveDiode
)

// String returns the curve name.
func (c CurveType) String() string {
	switch c {
	case CurveHardClip:
		return "hard"
	case CurveSoftClip:
		return "soft"
	case CurveDiode:
		return "diode"
	default:
		return "unknown"
	}
}

// Clipper is a stateless symmetric clipping stage.
type Clipper struct {
	curveType CurveType
	threshold float64
}

// NewClipper creates a clipper. threshold is the output level the curve
// saturates towards and must be positive.
func NewClipper(curveType CurveType, threshold float64) *Clipper {
	c := &Clipper{curveType: curveType}
	c.SetThreshold(threshold)
	return c
}

// SetThreshold changes the saturation level
func (c *Clipper) SetThreshold(threshold float64) {
	c.threshold = math.Max(1e-3, threshold)
}

// Threshold returns the saturation level
func (c *Clipper) Threshold() float64 {
	return c.threshold
}

// CurveType returns the transfer function in use
func (c *Clipper) CurveType() CurveType {
	return c.curveType
}

// ProcessSample clips a single sample
func (c *Clipper) ProcessSample(input float32) float32 {
	x := float64(input) / c.threshold

	var shaped float64
	switch c.curveType {
	case CurveHardClip:
		shaped = math.Max(-1.0, math.Min(1.0, x))
	case CurveSoftClip:
		shaped = math.Tanh(x)
	case CurveDiode:
		shaped = diode(x)
	default:
		shaped = x
	}

	return float32(shaped * c.threshold)
}

// Process clips a buffer in place
func (c *Clipper) Process(buffer []float32) {
	for i := range buffer {
		buffer[i] = c.ProcessSample(buffer[i])
	}
}

// Reset is a no-op; the clipper has no memory.
func (c *Clipper) Reset() {}

// diode is an exponential knee: linear around zero, approaching +-1
// faster than tanh once the diodes conduct.
func diode(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}
	return sign * (1.0 - math.Exp(-x))
}
