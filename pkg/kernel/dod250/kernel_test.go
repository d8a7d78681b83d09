package dod250

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/dod250go/pkg/dsp/gain"
	"github.com/justyntemme/dod250go/pkg/kernel"
)

var (
	_ kernel.Kernel        = (*Kernel)(nil)
	_ kernel.Activator     = (*Kernel)(nil)
	_ kernel.PortConnector = (*Kernel)(nil)
)

func sine(n int, amp, freq, sampleRate float64) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return buf
}

func noise(n int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = rng.Float32()*2 - 1
	}
	return buf
}

func TestSilenceInSilenceOut(t *testing.T) {
	k := New()
	k.SetSampleRate(48000)
	k.Activate(true)

	buf := make([]float32, 1024)
	k.ProcessBlock(buf, buf)
	assert.Equal(t, make([]float32, 1024), buf)
}

func TestOutputBounded(t *testing.T) {
	k := New()
	k.SetSampleRate(48000)
	k.Activate(true)

	level, drive := float32(1), float32(1)
	k.ConnectPort(PortLevel, &level)
	k.ConnectPort(PortGain, &drive)
	k.ClearState()

	buf := noise(4096, 1)
	for i := range buf {
		buf[i] *= 10
	}
	k.ProcessBlock(buf, buf)

	assert.LessOrEqual(t, gain.Peak(buf), float32(1.5))
	for _, v := range buf {
		require.False(t, math.IsNaN(float64(v)))
	}
}

func TestGainDrivesHarder(t *testing.T) {
	run := func(g float32) float32 {
		k := New()
		k.SetSampleRate(48000)
		k.ConnectPort(PortGain, &g)

		buf := sine(4800, 0.01, 2000, 48000)
		k.ProcessBlock(buf, buf)
		return gain.Peak(buf[2400:])
	}

	clean, driven := run(0), run(1)
	assert.Greater(t, driven, 5*clean)
}

func TestLevelRange(t *testing.T) {
	run := func(l float32) float32 {
		k := New()
		k.SetSampleRate(48000)
		k.ConnectPort(PortLevel, &l)
		k.ClearState()

		buf := sine(4800, 0.1, 440, 48000)
		k.ProcessBlock(buf, buf)
		return gain.Peak(buf[2400:])
	}

	ratio := float64(run(1) / run(0))
	assert.InEpsilon(t, gain.DbToLinear(maxLevelDB-minLevelDB), ratio, 0.01)
}

func TestUnboundControlsReadDefaults(t *testing.T) {
	k := New()
	assert.Equal(t, DefaultLevel, k.levelValue())
	assert.Equal(t, DefaultGain, k.gainValue())

	nan := float32(math.NaN())
	high := float32(3)
	k.ConnectPort(PortLevel, &nan)
	k.ConnectPort(PortGain, &high)
	assert.Equal(t, DefaultLevel, k.levelValue())
	assert.Equal(t, 1.0, k.gainValue())

	k.ConnectPort(PortGain, nil)
	assert.Equal(t, DefaultGain, k.gainValue())

	k.ConnectPort(PortBypass, &high)
	assert.Equal(t, DefaultGain, k.gainValue())
}

func TestActivate(t *testing.T) {
	k := New()
	assert.False(t, k.Active())

	k.Activate(false)
	assert.False(t, k.Active())

	k.Activate(true)
	work := &k.work[0]
	k.Activate(true)
	assert.Same(t, work, &k.work[0], "second activate keeps the buffers")

	k.Activate(false)
	k.Activate(false)
	assert.False(t, k.Active())
}

func TestVectorPathMatchesFallback(t *testing.T) {
	const n = 1000 // spans several work chunks

	vector, scalar := New(), New()
	for _, k := range []*Kernel{vector, scalar} {
		k.SetSampleRate(44100)
	}
	vector.Activate(true)

	level := float32(0.9)
	vector.ConnectPort(PortLevel, &level)
	scalar.ConnectPort(PortLevel, &level)

	a := noise(n, 7)
	b := append([]float32(nil), a...)
	vector.ProcessBlock(a, a)
	scalar.ProcessBlock(b, b)

	for i := range a {
		require.InDelta(t, b[i], a[i], 1e-6, "sample %d", i)
	}
}

func TestProcessBlockAliasing(t *testing.T) {
	inPlace, separate := New(), New()

	in := noise(512, 3)
	buf := append([]float32(nil), in...)
	out := make([]float32, len(in))

	inPlace.ProcessBlock(buf, buf)
	separate.ProcessBlock(in, out)

	assert.Equal(t, buf, out)
	assert.NotEqual(t, in, out, "input is left untouched")
}

func TestClearState(t *testing.T) {
	k := New()
	k.SetSampleRate(48000)
	k.Activate(true)

	buf := noise(1024, 11)
	k.ProcessBlock(buf, buf)

	k.ClearState()
	silence := make([]float32, 256)
	k.ProcessBlock(silence, silence)
	assert.Equal(t, make([]float32, 256), silence)
}

func TestSetSampleRate(t *testing.T) {
	k := New()
	assert.Equal(t, uint32(fallbackRate), k.SampleRate())

	k.SetSampleRate(0)
	assert.Equal(t, uint32(fallbackRate), k.SampleRate())

	k.SetSampleRate(8000)
	assert.Equal(t, uint32(8000), k.SampleRate())

	buf := noise(800, 5)
	k.ProcessBlock(buf, buf)
	for _, v := range buf {
		require.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
	}
}

func TestPorts(t *testing.T) {
	ports := Ports()
	assert.Equal(t, 3, ports.Count())

	require.NotNil(t, ports.Bypass())
	assert.Equal(t, PortBypass, ports.Bypass().ID)
	assert.Equal(t, PortLevel, ports.BySymbol("level").ID)
	assert.Equal(t, PortGain, ports.BySymbol("gain").ID)

	assert.NotSame(t, ports, Ports())
}
