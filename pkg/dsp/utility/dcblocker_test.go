package utility

import (
	"math"
	"testing"
)

func TestDCBlockerRemovesOffset(t *testing.T) {
	dc := NewDCBlocker(10, 48000)

	buf := make([]float32, 48000)
	for i := range buf {
		buf[i] = 0.5 + 0.25*float32(math.Sin(2*math.Pi*440*float64(i)/48000))
	}
	dc.Process(buf)

	var sum float64
	tail := buf[len(buf)-4800:]
	for _, v := range tail {
		sum += float64(v)
	}
	if mean := sum / float64(len(tail)); math.Abs(mean) > 0.01 {
		t.Errorf("mean after DC blocking = %f, want ~0", mean)
	}
}

func TestDCBlockerReset(t *testing.T) {
	dc := NewDCBlocker(10, 48000)
	dc.Process([]float32{1, 1, 1})
	dc.Reset()

	if got := dc.ProcessSample(0); got != 0 {
		t.Errorf("ProcessSample(0) after Reset = %f, want 0", got)
	}
}

func TestDCBlockerCoefficientClamp(t *testing.T) {
	tests := []struct {
		name   string
		cutoff float32
		rate   float64
		want   float32
	}{
		{"very high cutoff", 20000, 48000, 0.9},
		{"very low cutoff", 0.001, 48000, 0.9999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := NewDCBlocker(tt.cutoff, tt.rate)
			if dc.coefficient != tt.want {
				t.Errorf("coefficient = %f, want %f", dc.coefficient, tt.want)
			}
		})
	}
}
