// Package gain provides amplitude and gain-related DSP operations.
package gain

import (
	"math"
)

// MinDB is the minimum dB value (effectively -infinity)
const MinDB = -200.0

// LinearToDb converts a linear amplitude value to decibels.
// Returns MinDB for values <= 0.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * math.Log10(linear)
}

// DbToLinear converts a decibel value to linear amplitude.
// Values <= MinDB return 0.
func DbToLinear(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10.0, db/20.0)
}

// MapLinear maps a normalized 0..1 value onto [min, max].
func MapLinear(normalized, min, max float64) float64 {
	return min + clamp01(normalized)*(max-min)
}

// MapLog maps a normalized 0..1 value onto [min, max] on a logarithmic curve.
// min must be positive.
func MapLog(normalized, min, max float64) float64 {
	return min * math.Pow(max/min, clamp01(normalized))
}

// Peak returns the largest absolute sample value in buffer.
func Peak(buffer []float32) float32 {
	var peak float32
	for _, v := range buffer {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
