package host

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/dod250go/pkg/framework/bypass"
	"github.com/justyntemme/dod250go/pkg/framework/param"
	"github.com/justyntemme/dod250go/pkg/kernel"
	"github.com/justyntemme/dod250go/pkg/kernel/dod250"
	"github.com/justyntemme/dod250go/pkg/plugin"
)

func quiet() plugin.Option {
	logger, _ := logtest.NewNullLogger()
	return plugin.WithLogger(logrus.NewEntry(logger))
}

func identityDescriptor() *plugin.Descriptor {
	return &plugin.Descriptor{
		URI:   "urn:dod250go:test#identity",
		Ports: param.NewRegistry().MustAdd(param.BypassParameter(uint32(plugin.PortBypass), "Bypass").Build()),
		New:   kernel.Identity,
	}
}

func ones(n int) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = 1
	}
	return buf
}

func newHost(t *testing.T, desc *plugin.Descriptor, rate float64, block int) *Host {
	t.Helper()
	h, err := New(desc, rate, block, quiet())
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h
}

func TestNewErrors(t *testing.T) {
	_, err := New(identityDescriptor(), 48000, 0, quiet())
	assert.True(t, errors.Is(err, ErrInvalidBlockSize))

	_, err = New(nil, 48000, 256, quiet())
	assert.True(t, errors.Is(err, plugin.ErrNilDescriptor))

	_, err = New(identityDescriptor(), -1, 256, quiet())
	assert.True(t, errors.Is(err, plugin.ErrInvalidSampleRate))
}

func TestProcessPassThrough(t *testing.T) {
	h := newHost(t, identityDescriptor(), 48000, 256)

	in := make([]float32, 1000) // ends on a short block
	for i := range in {
		in[i] = float32(math.Sin(float64(i) * 0.01))
	}
	out := make([]float32, len(in))
	h.Process(in, out)

	assert.Equal(t, in, out)
	assert.Equal(t, uint64(4), h.Profiler().Blocks())
	assert.True(t, h.Instance().Active())
}

func TestRenderBypassEvents(t *testing.T) {
	const (
		rate  = 48000
		block = 1024
	)
	h := newHost(t, identityDescriptor(), rate, block)

	// Bypass at once, back on at 0.5 s (sample 24000, inside block 23).
	out, err := h.Render(ones(rate), Scene{Events: ToggleAt(0, 0.5)})
	require.NoError(t, err)
	require.Len(t, out, rate)

	assert.Less(t, out[block-1], float32(1))
	assert.Equal(t, make([]float32, 15*block), out[8*block:23*block])
	assert.InDelta(t, 1.0/8192, out[23*block], 1e-7)
	assert.Equal(t, ones(rate-31*block), out[31*block:])
	assert.Equal(t, bypass.Active, h.Instance().State())
}

func TestRenderInitialControls(t *testing.T) {
	h := newHost(t, identityDescriptor(), 48000, 64)

	out, err := h.Render(ones(64*10), Scene{Controls: map[string]float64{"bypass": 1}})
	require.NoError(t, err)
	assert.Less(t, out[len(out)-1], out[0])
	assert.Equal(t, bypass.RampingDown, h.Instance().State())
}

func TestRenderErrors(t *testing.T) {
	h := newHost(t, identityDescriptor(), 48000, 64)

	_, err := h.Render(ones(64), Scene{Controls: map[string]float64{"drive": 1}})
	assert.True(t, errors.Is(err, ErrUnknownControl))

	_, err = h.Render(ones(64), Scene{Events: []Event{{At: -1}}})
	assert.True(t, errors.Is(err, ErrInvalidScene))

	h.Close()
	_, err = h.Render(ones(64), Scene{})
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestBypassWithoutPort(t *testing.T) {
	h := newHost(t, &plugin.Descriptor{URI: "urn:dod250go:test#bare", New: kernel.Identity}, 48000, 64)

	assert.True(t, errors.Is(h.SetBypass(true), ErrNoBypass))
	_, err := h.ToggleBypass()
	assert.True(t, errors.Is(err, ErrNoBypass))

	_, err = h.Render(ones(64), Scene{Events: ToggleAt(0)})
	assert.True(t, errors.Is(err, ErrNoBypass))
}

func TestToggleBypass(t *testing.T) {
	h := newHost(t, identityDescriptor(), 48000, 64)

	on, err := h.ToggleBypass()
	require.NoError(t, err)
	assert.True(t, on)

	h.Process(ones(64), make([]float32, 64))
	assert.Equal(t, bypass.RampingDown, h.Instance().State())

	on, err = h.ToggleBypass()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestControls(t *testing.T) {
	h := newHost(t, dod250.Descriptor(), 48000, 256)

	gain, err := h.Control("gain")
	require.NoError(t, err)
	assert.InDelta(t, dod250.DefaultGain, gain, 1e-9)

	require.NoError(t, h.SetControl("gain", 0.8))
	gain, _ = h.Control("gain")
	assert.InDelta(t, 0.8, gain, 1e-9)

	assert.True(t, errors.Is(h.SetControl("tone", 1), ErrUnknownControl))
	_, err = h.Control("tone")
	assert.True(t, errors.Is(err, ErrUnknownControl))
}

func TestHostsOwnTheirControls(t *testing.T) {
	desc := dod250.Descriptor()
	a := newHost(t, desc, 48000, 256)
	b := newHost(t, desc, 48000, 256)

	require.NoError(t, a.SetControl("level", 1))
	level, _ := b.Control("level")
	assert.InDelta(t, dod250.DefaultLevel, level, 1e-9)
	assert.InDelta(t, dod250.DefaultLevel, desc.Ports.BySymbol("level").GetPlainValue(), 1e-9)
}

func TestPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drive.preset")

	a := newHost(t, dod250.Descriptor(), 48000, 256)
	require.NoError(t, a.SetControl("gain", 0.8))
	require.NoError(t, a.SetControl("level", 0.25))
	require.NoError(t, a.SavePreset(path))

	b := newHost(t, dod250.Descriptor(), 48000, 256)
	require.NoError(t, b.LoadPreset(path))

	gain, _ := b.Control("gain")
	level, _ := b.Control("level")
	assert.InDelta(t, 0.8, gain, 1e-9)
	assert.InDelta(t, 0.25, level, 1e-9)

	assert.Error(t, b.LoadPreset(filepath.Join(t.TempDir(), "missing.preset")))
}

func TestRenderOverdrive(t *testing.T) {
	const rate = 44100
	h := newHost(t, dod250.Descriptor(), rate, 512)

	in := make([]float32, rate)
	for i := range in {
		in[i] = float32(0.5 * math.Sin(2*math.Pi*220*float64(i)/rate))
	}

	out, err := h.Render(in, Scene{
		Controls: map[string]float64{"gain": 1, "level": 1},
		Events:   ToggleAt(0.5),
	})
	require.NoError(t, err)

	for _, v := range out {
		require.False(t, math.IsNaN(float64(v)))
		require.Less(t, math.Abs(float64(v)), 1.5)
	}
	assert.Equal(t, uint64((rate+511)/512), h.Profiler().Blocks())
	assert.Equal(t, make([]float32, 100), out[rate-100:], "bypass mutes once the ramp ends")
}

func TestClose(t *testing.T) {
	h, err := New(dod250.Descriptor(), 48000, 64, quiet())
	require.NoError(t, err)

	k := h.Instance().Kernel().(*dod250.Kernel)
	assert.True(t, k.Active())

	h.Close()
	h.Close()
	assert.False(t, k.Active())

	out := []float32{7}
	h.Process([]float32{1}, out)
	assert.Equal(t, []float32{7}, out)
}

func TestLoadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
controls:
  gain: 0.8
events:
  - at: 1.5
    bypass: true
  - at: 3
    bypass: false
    controls: {level: 0.25}
`), 0o644))

	scene, err := LoadScene(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"gain": 0.8}, scene.Controls)
	require.Len(t, scene.Events, 2)
	assert.Equal(t, 1.5, scene.Events[0].At)
	require.NotNil(t, scene.Events[0].Bypass)
	assert.True(t, *scene.Events[0].Bypass)
	assert.False(t, *scene.Events[1].Bypass)
	assert.Equal(t, map[string]float64{"level": 0.25}, scene.Events[1].Controls)

	_, err = LoadScene(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseScene(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"controls only", "controls: {gain: 1}", false},
		{"unknown key", "control: {gain: 1}", true},
		{"negative time", "events: [{at: -2, bypass: true}]", true},
		{"bad type", "events: [{at: soon}]", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScene([]byte(tt.input))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidScene), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSceneMarshal(t *testing.T) {
	scene := Scene{Controls: map[string]float64{"gain": 0.5}, Events: ToggleAt(1, 2)}

	data, err := scene.Marshal()
	require.NoError(t, err)

	parsed, err := ParseScene(data)
	require.NoError(t, err)
	assert.Equal(t, scene, parsed)
}

func TestToggleAt(t *testing.T) {
	events := ToggleAt(1, 2, 3)
	require.Len(t, events, 3)
	for i, want := range []bool{true, false, true} {
		assert.Equal(t, want, *events[i].Bypass)
	}
	assert.Empty(t, ToggleAt())
}
