package bypass

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ones(n int) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = 1
	}
	return buf
}

func TestStepForRate(t *testing.T) {
	tests := []struct {
		name string
		rate uint32
		want float32
	}{
		{"48k reference", 48000, 8192},
		{"44.1k truncates", 44100, 7526},
		{"96k doubles", 96000, 16384},
		{"192k", 192000, 32768},
		{"22.05k", 22050, 3763},
		{"tiny rate clamps to one sample", 1, 1},
		{"zero rate clamps to one sample", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepForRate(tt.rate))
		})
	}
}

func TestInitResetsCounters(t *testing.T) {
	r := NewRamp()
	r.Init(48000)

	assert.Equal(t, Active, r.State())
	assert.Equal(t, float32(8192), r.Step())
	assert.False(t, r.Requested())
	assert.Equal(t, float32(1), r.Gain())
}

func TestPassThroughWhenNeverBypassed(t *testing.T) {
	r := NewRamp()
	r.Init(48000)

	for block := 0; block < 20; block++ {
		buf := []float32{0.25, -0.5, 1, 0}
		assert.Equal(t, TransitionNone, r.Observe(false))

		d := r.ApplyEnvelope(buf)

		assert.True(t, d.InvokeKernel())
		assert.False(t, d.ClearKernel)
		assert.Equal(t, []float32{0.25, -0.5, 1, 0}, buf)
		assert.Equal(t, Active, r.State())
	}
}

func TestConcreteScenario48k(t *testing.T) {
	r := NewRamp()
	r.Init(48000)

	require.Equal(t, TransitionToBypass, r.Observe(true))

	for block := 1; block <= 8; block++ {
		buf := ones(1024)
		d := r.ApplyEnvelope(buf)

		if block < 8 {
			assert.True(t, d.InvokeKernel(), "block %d", block)
			assert.False(t, d.ClearKernel, "block %d", block)
			assert.True(t, r.IsRampingDown(), "block %d", block)
		} else {
			assert.False(t, d.InvokeKernel())
			assert.True(t, d.ClearKernel)
		}

		require.Equal(t, TransitionNone, r.Observe(true))
	}

	assert.True(t, r.IsBypassed())

	buf := ones(1024)
	d := r.ApplyEnvelope(buf)
	assert.False(t, d.InvokeKernel())
	assert.False(t, d.ClearKernel)
	for i, v := range buf {
		require.Zero(t, v, "sample %d", i)
	}
}

func TestDownRampTerminatesAcrossUnevenBlocks(t *testing.T) {
	blockSizes := []int{1, 7, 64, 1000, 4096, 8192, 10000}

	for _, size := range blockSizes {
		r := NewRamp()
		r.Init(48000)
		r.Observe(true)

		consumed := 0
		for !r.IsBypassed() {
			r.ApplyEnvelope(ones(size))
			consumed += size
			require.LessOrEqual(t, consumed, 8192+size, "block size %d", size)
		}

		assert.GreaterOrEqual(t, consumed, 8192, "block size %d", size)
		assert.Less(t, consumed-size, 8192, "block size %d", size)
	}
}

func TestDownRampEnvelopeIsNonIncreasing(t *testing.T) {
	r := NewRamp()
	r.Init(44100)
	r.Observe(true)

	prev := float32(1)
	for !r.IsBypassed() {
		buf := ones(1000)
		r.ApplyEnvelope(buf)
		for i, g := range buf {
			require.LessOrEqual(t, g, prev, "sample %d", i)
			prev = g
		}
	}

	// Overshooting the last block leaves the counter one below zero.
	assert.InDelta(t, -1/float64(r.Step()), float64(prev), 1e-9)
}

func TestDownRampFirstSamples(t *testing.T) {
	r := NewRamp()
	r.Init(48000)
	r.Observe(true)

	buf := ones(3)
	r.ApplyEnvelope(buf)

	assert.InDelta(t, 8191.0/8192.0, buf[0], 1e-7)
	assert.InDelta(t, 8190.0/8192.0, buf[1], 1e-7)
	assert.InDelta(t, 8189.0/8192.0, buf[2], 1e-7)
}

func TestUpRampResumesAudio(t *testing.T) {
	r := NewRamp()
	r.Init(48000)
	r.Observe(true)
	for !r.IsBypassed() {
		r.ApplyEnvelope(ones(512))
	}

	require.Equal(t, TransitionToActive, r.Observe(false))
	assert.False(t, r.IsBypassed())
	assert.True(t, r.IsRampingUp())

	prev := float32(0)
	consumed := 0
	for r.IsRampingUp() {
		buf := ones(512)
		d := r.ApplyEnvelope(buf)
		assert.True(t, d.InvokeKernel())
		assert.False(t, r.IsBypassed())
		for i, g := range buf {
			require.GreaterOrEqual(t, g, prev, "sample %d", i)
			prev = g
		}
		consumed += 512
	}

	assert.Equal(t, 8192, consumed)
	assert.Equal(t, Active, r.State())
	assert.Equal(t, float32(1), prev)

	buf := []float32{0.3, 0.6}
	d := r.ApplyEnvelope(buf)
	assert.True(t, d.InvokeKernel())
	assert.Equal(t, []float32{0.3, 0.6}, buf)
}

func TestUpRampOvershootStaysBounded(t *testing.T) {
	r := NewRamp()
	r.Init(48000)
	r.Observe(true)
	r.ApplyEnvelope(ones(8192))
	require.True(t, r.IsBypassed())

	r.Observe(false)
	buf := ones(10000)
	r.ApplyEnvelope(buf)

	assert.Equal(t, Active, r.State())
	assert.InDelta(t, 8193.0/8192.0, buf[len(buf)-1], 1e-7)
}

func TestUpRampFromActiveStart(t *testing.T) {
	// Toggling back before any block was processed still fades in from zero.
	r := NewRamp()
	r.Init(48000)
	r.Observe(true)
	r.Observe(false)

	buf := ones(2)
	r.ApplyEnvelope(buf)
	assert.InDelta(t, 1.0/8192.0, buf[0], 1e-9)
	assert.InDelta(t, 2.0/8192.0, buf[1], 1e-9)
}

func TestInterruptedDownRampRestartsUpRampFromZero(t *testing.T) {
	r := NewRamp()
	r.Init(48000)
	r.Observe(true)
	r.ApplyEnvelope(ones(4096))
	require.True(t, r.IsRampingDown())

	assert.Equal(t, TransitionToActive, r.Observe(false))
	assert.True(t, r.IsRampingUp())
	assert.False(t, r.IsRampingDown())

	buf := ones(1)
	r.ApplyEnvelope(buf)
	assert.InDelta(t, 1.0/8192.0, buf[0], 1e-9)
}

func TestInterruptedUpRampRestartsDownRampFromFull(t *testing.T) {
	r := NewRamp()
	r.Init(48000)
	r.Observe(true)
	r.ApplyEnvelope(ones(8192))
	r.Observe(false)
	r.ApplyEnvelope(ones(100))
	require.True(t, r.IsRampingUp())

	assert.Equal(t, TransitionToBypass, r.Observe(true))

	buf := ones(1)
	r.ApplyEnvelope(buf)
	assert.InDelta(t, 8191.0/8192.0, buf[0], 1e-7)
}

func TestMutualExclusionUnderRapidToggling(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := NewRamp()
	r.Init(8000)

	for block := 0; block < 5000; block++ {
		r.Observe(rng.Intn(4) == 0)
		r.ApplyEnvelope(ones(1 + rng.Intn(700)))

		require.False(t, r.IsRampingDown() && r.IsRampingUp(), "block %d", block)
		if r.IsBypassed() {
			require.True(t, r.Requested(), "bypassed without request at block %d", block)
		}
	}
}

func TestDryBypassKeepsInput(t *testing.T) {
	r := NewRamp(WithDryBypass())
	r.Init(48000)
	r.Observe(true)
	r.ApplyEnvelope(ones(8192))
	require.True(t, r.IsBypassed())

	buf := []float32{0.1, 0.2, 0.3}
	d := r.ApplyEnvelope(buf)

	assert.False(t, d.InvokeKernel())
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, buf)
}

func TestUninitialisedRampUsesOneSampleWidth(t *testing.T) {
	r := NewRamp()
	r.Observe(true)

	buf := []float32{1, 1}
	d := r.ApplyEnvelope(buf)

	assert.Equal(t, Bypassed, d.State)
	assert.True(t, d.ClearKernel)
	assert.Equal(t, []float32{0, -1}, buf)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "Active", Active.String())
	assert.Equal(t, "RampingDown", RampingDown.String())
	assert.Equal(t, "Bypassed", Bypassed.String())
	assert.Equal(t, "RampingUp", RampingUp.String())
	assert.Equal(t, "Unknown", State(42).String())
	assert.Equal(t, "ToBypass", TransitionToBypass.String())
	assert.Equal(t, "ToActive", TransitionToActive.String())
	assert.Equal(t, "None", TransitionNone.String())
}
