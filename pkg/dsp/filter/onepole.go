package filter

import "math"

// OnePole is a first-order lowpass with a complementary highpass output.
// The highpass is input minus lowpass, so the two outputs always sum to the input.
type OnePole struct {
	coeff float32 // feedback coefficient
	z1    float32 // lowpass state
}

// NewOnePole creates a one-pole filter with the given corner frequency
func NewOnePole(sampleRate, frequency float64) *OnePole {
	o := &OnePole{}
	o.SetFrequency(sampleRate, frequency)
	return o
}

// SetFrequency moves the corner frequency
func (o *OnePole) SetFrequency(sampleRate, frequency float64) {
	if frequency >= sampleRate/2 {
		frequency = sampleRate / 2 * 0.99
	}
	o.coeff = float32(math.Exp(-2.0 * math.Pi * frequency / sampleRate))
}

// Lowpass filters one sample and returns the lowpass output
func (o *OnePole) Lowpass(x float32) float32 {
	o.z1 = x + o.coeff*(o.z1-x)
	return o.z1
}

// Highpass filters one sample and returns the highpass output
func (o *OnePole) Highpass(x float32) float32 {
	return x - o.Lowpass(x)
}

// Reset clears the filter state
func (o *OnePole) Reset() {
	o.z1 = 0
}
