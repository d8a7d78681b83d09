package distortion

import (
	"math"
	"testing"
)

func TestClipperCurves(t *testing.T) {
	curves := []CurveType{CurveHardClip, CurveSoftClip, CurveDiode}

	for _, curve := range curves {
		t.Run(curve.String(), func(t *testing.T) {
			c := NewClipper(curve, 0.5)

			// Bounded by the threshold
			if got := c.ProcessSample(100); got > 0.5+1e-6 {
				t.Errorf("ProcessSample(100) = %f, want <= 0.5", got)
			}

			// Symmetric
			pos := c.ProcessSample(0.3)
			neg := c.ProcessSample(-0.3)
			if math.Abs(float64(pos+neg)) > 1e-6 {
				t.Errorf("not symmetric: %f and %f", pos, neg)
			}

			// Monotonic
			prev := c.ProcessSample(-2)
			for x := float32(-2); x <= 2; x += 0.01 {
				got := c.ProcessSample(x)
				if got < prev-1e-6 {
					t.Fatalf("not monotonic at %f: %f < %f", x, got, prev)
				}
				prev = got
			}

			if got := c.ProcessSample(0); got != 0 {
				t.Errorf("ProcessSample(0) = %f, want 0", got)
			}
		})
	}
}

func TestClipperHardClip(t *testing.T) {
	c := NewClipper(CurveHardClip, 1)

	tests := []struct {
		input    float32
		expected float32
	}{
		{0.5, 0.5},
		{1.5, 1.0},
		{-1.5, -1.0},
		{0.0, 0.0},
	}

	for _, test := range tests {
		if result := c.ProcessSample(test.input); result != test.expected {
			t.Errorf("HardClip(%f) = %f, want %f", test.input, result, test.expected)
		}
	}
}

func TestClipperProcessBuffer(t *testing.T) {
	c := NewClipper(CurveSoftClip, 1)
	buf := []float32{0, 10, -10}
	c.Process(buf)

	if buf[0] != 0 || buf[1] <= 0.99 || buf[2] >= -0.99 {
		t.Errorf("unexpected output %v", buf)
	}
}

func TestClipperThresholdFloor(t *testing.T) {
	c := NewClipper(CurveDiode, 0)
	if c.Threshold() <= 0 {
		t.Errorf("threshold = %f, want positive", c.Threshold())
	}
	if got := c.ProcessSample(1); math.IsNaN(float64(got)) {
		t.Error("got NaN")
	}
}
