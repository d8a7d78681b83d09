package debug

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// AudioAnalyzer collects sanity statistics over rendered audio.
type AudioAnalyzer struct {
	clippingThreshold float32
	dcThreshold       float32
	silenceThreshold  float32
}

// NewAudioAnalyzer creates a new audio analyzer with default settings.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		clippingThreshold: 0.99,
		dcThreshold:       0.01,
		silenceThreshold:  0.0001,
	}
}

// AnalysisResult contains the results of audio buffer analysis.
type AnalysisResult struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	Clipping       bool
	ClippedSamples int
	Silent         bool
	HasNaN         bool
	NaNCount       int
	ZeroCrossings  int
}

// Fields returns the result as logrus fields.
func (r AnalysisResult) Fields() logrus.Fields {
	return logrus.Fields{
		"samples": r.Samples,
		"peak":    r.Peak,
		"rms":     r.RMS,
		"dc":      r.DC,
		"clipped": r.ClippedSamples,
		"nan":     r.NaNCount,
	}
}

// Analyze performs comprehensive analysis on an audio buffer.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	result := AnalysisResult{Samples: len(buffer)}

	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares float64
	var lastSample float32

	for i, sample := range buffer {
		if math.IsNaN(float64(sample)) {
			result.HasNaN = true
			result.NaNCount++
			continue
		}

		absSample := sample
		if absSample < 0 {
			absSample = -absSample
		}

		if absSample > result.Peak {
			result.Peak = absSample
		}

		if absSample >= a.clippingThreshold {
			result.Clipping = true
			result.ClippedSamples++
		}

		sum += float64(sample)
		sumSquares += float64(sample) * float64(sample)

		if i > 0 && ((lastSample < 0 && sample >= 0) || (lastSample >= 0 && sample < 0)) {
			result.ZeroCrossings++
		}
		lastSample = sample
	}

	result.RMS = float32(math.Sqrt(sumSquares / float64(len(buffer))))
	result.DC = float32(sum / float64(len(buffer)))
	result.Silent = result.RMS < a.silenceThreshold

	return result
}

// Check returns human readable problems found in buffer.
func (a *AudioAnalyzer) Check(buffer []float32, name string) []string {
	var issues []string

	result := a.Analyze(buffer)

	if result.HasNaN {
		issues = append(issues, fmt.Sprintf("%s: contains %d NaN values", name, result.NaNCount))
	}

	if result.Clipping {
		issues = append(issues, fmt.Sprintf("%s: clipping detected (%d samples)", name, result.ClippedSamples))
	}

	if math.Abs(float64(result.DC)) > float64(a.dcThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset detected (%.3f)", name, result.DC))
	}

	if result.Peak > 1.0 {
		issues = append(issues, fmt.Sprintf("%s: peak exceeds 1.0 (%.3f)", name, result.Peak))
	}

	return issues
}

// CompareBuffers compares two audio buffers and reports differences.
func CompareBuffers(a, b []float32, tolerance float32) string {
	if len(a) != len(b) {
		return fmt.Sprintf("Buffer length mismatch: %d vs %d", len(a), len(b))
	}

	var maxDiff float32
	var maxDiffIndex int
	var totalDiff float64
	var diffCount int

	for i := 0; i < len(a); i++ {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}

		if diff > tolerance {
			diffCount++
			totalDiff += float64(diff)

			if diff > maxDiff {
				maxDiff = diff
				maxDiffIndex = i
			}
		}
	}

	if diffCount == 0 {
		return "Buffers are identical within tolerance"
	}

	return fmt.Sprintf("Buffer differences:\n"+
		"  Samples different: %d / %d (%.1f%%)\n"+
		"  Max difference: %.6f at sample %d\n"+
		"  Average difference: %.6f\n"+
		"  Tolerance: %.6f",
		diffCount, len(a), float64(diffCount)/float64(len(a))*100,
		maxDiff, maxDiffIndex,
		totalDiff/float64(diffCount),
		tolerance)
}

var defaultAnalyzer = NewAudioAnalyzer()

// AnalyzeBuffer performs analysis on a buffer using the default analyzer.
func AnalyzeBuffer(buffer []float32) AnalysisResult {
	return defaultAnalyzer.Analyze(buffer)
}

// CheckBuffer performs sanity checks using the default analyzer.
func CheckBuffer(buffer []float32, name string) []string {
	return defaultAnalyzer.Check(buffer, name)
}

// LogBufferStats logs statistics about an audio buffer and warns about
// every problem found.
func LogBufferStats(logger *Logger, buffer []float32, name string) AnalysisResult {
	result := defaultAnalyzer.Analyze(buffer)
	logger.WithFields(result.Fields()).WithField("buffer", name).Info("buffer stats")
	for _, issue := range defaultAnalyzer.Check(buffer, name) {
		logger.Warn("%s", issue)
	}
	return result
}
