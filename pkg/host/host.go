// Package host drives a plugin instance offline: it owns the audio and
// control buffers, walks a signal through it block by block and applies
// scene automation between blocks.
package host

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/justyntemme/dod250go/pkg/framework/debug"
	"github.com/justyntemme/dod250go/pkg/framework/param"
	"github.com/justyntemme/dod250go/pkg/framework/state"
	"github.com/justyntemme/dod250go/pkg/plugin"
)

var (
	ErrInvalidBlockSize = errors.New("invalid block size")
	ErrUnknownControl   = errors.New("unknown control")
	ErrNoBypass         = errors.New("plugin has no bypass port")
	ErrClosed           = errors.New("host closed")
)

// Host owns one activated plugin instance.
type Host struct {
	desc  *plugin.Descriptor
	inst  *plugin.Instance
	ports *param.Registry

	// controls and cells are parallel: cells[i] is the port cell bound for
	// controls[i] and is refreshed from it before every block.
	controls []*param.Parameter
	cells    []*float32

	in, out    []float32
	blockSize  int
	sampleRate float64

	profiler *debug.BlockProfiler
	log      *logrus.Entry
	closed   bool
}

// New instantiates desc, binds a blockSize buffer pair plus one cell per
// control port, and activates the instance.
func New(desc *plugin.Descriptor, sampleRate float64, blockSize int, opts ...plugin.Option) (*Host, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}

	inst, err := plugin.Instantiate(desc, sampleRate, opts...)
	if err != nil {
		return nil, err
	}

	ports := param.NewRegistry()
	if desc.Ports != nil {
		ports = desc.Ports.Clone()
	}

	h := &Host{
		desc:       desc,
		inst:       inst,
		ports:      ports,
		controls:   ports.All(),
		in:         make([]float32, blockSize),
		out:        make([]float32, blockSize),
		blockSize:  blockSize,
		sampleRate: sampleRate,
		profiler:   debug.NewBlockProfiler(sampleRate, blockSize),
		log:        debug.WithFields(logrus.Fields{"component": "host", "uri": desc.URI}),
	}

	inst.ConnectPort(plugin.PortInput, h.in)
	inst.ConnectPort(plugin.PortOutput, h.out)

	h.cells = make([]*float32, len(h.controls))
	for i, p := range h.controls {
		cell := new(float32)
		*cell = float32(p.GetPlainValue())
		h.cells[i] = cell
		inst.ConnectPort(plugin.PortIndex(p.ID), cell)
	}

	inst.Activate()

	h.log.WithFields(logrus.Fields{
		"sample_rate": sampleRate,
		"block_size":  blockSize,
		"controls":    len(h.controls),
	}).Debug("host ready")

	return h, nil
}

// Process runs in through the plugin into out, which must be at least as
// long. The tail block may be shorter than the block size. Control values
// are read once per block.
func (h *Host) Process(in, out []float32) {
	if h.closed {
		return
	}
	for start := 0; start < len(in); start += h.blockSize {
		n := min(h.blockSize, len(in)-start)
		h.processBlock(in[start:start+n], out[start:start+n])
	}
}

func (h *Host) processBlock(in, out []float32) {
	h.syncControls()
	copy(h.in, in)
	h.profiler.TimeBlock(func() {
		h.inst.Run(uint32(len(in)))
	})
	copy(out, h.out[:len(in)])
}

// syncControls copies the current control values into the port cells.
func (h *Host) syncControls() {
	for i, p := range h.controls {
		*h.cells[i] = float32(p.GetPlainValue())
	}
}

// SetControl sets a control port by symbol to a plain value.
func (h *Host) SetControl(symbol string, value float64) error {
	p := h.ports.BySymbol(symbol)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownControl, symbol)
	}
	p.SetPlainValue(value)
	return nil
}

// Control returns the plain value of a control port.
func (h *Host) Control(symbol string) (float64, error) {
	p := h.ports.BySymbol(symbol)
	if p == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownControl, symbol)
	}
	return p.GetPlainValue(), nil
}

// SetBypass switches the bypass port. Safe to call from another goroutine
// than the one calling Process.
func (h *Host) SetBypass(on bool) error {
	p := h.ports.Bypass()
	if p == nil {
		return ErrNoBypass
	}
	if on {
		p.SetValue(1)
	} else {
		p.SetValue(0)
	}
	return nil
}

// ToggleBypass flips the bypass port and returns the new setting.
func (h *Host) ToggleBypass() (bool, error) {
	p := h.ports.Bypass()
	if p == nil {
		return false, ErrNoBypass
	}
	return p.Toggle() != 0, nil
}

// Ports returns the host's own control table. Values set here reach the
// plugin on the next block.
func (h *Host) Ports() *param.Registry {
	return h.ports
}

// Instance returns the plugin instance.
func (h *Host) Instance() *plugin.Instance {
	return h.inst
}

// BlockSize returns the largest block handed to Run.
func (h *Host) BlockSize() int {
	return h.blockSize
}

// SampleRate returns the rate the instance runs at.
func (h *Host) SampleRate() float64 {
	return h.sampleRate
}

// Profiler returns the Run timings.
func (h *Host) Profiler() *debug.BlockProfiler {
	return h.profiler
}

// Presets returns a state manager over the host's control table.
func (h *Host) Presets() *state.Manager {
	return h.desc.Presets(h.ports)
}

// LoadPreset applies a preset file to the controls.
func (h *Host) LoadPreset(path string) error {
	if err := h.Presets().LoadFile(path); err != nil {
		return fmt.Errorf("load preset %s: %w", path, err)
	}
	h.log.WithField("preset", path).Info("preset loaded")
	return nil
}

// SavePreset writes the current controls to a preset file.
func (h *Host) SavePreset(path string) error {
	if err := h.Presets().SaveFile(path); err != nil {
		return fmt.Errorf("save preset %s: %w", path, err)
	}
	h.log.WithField("preset", path).Info("preset saved")
	return nil
}

// Close deactivates and releases the instance. Further calls do nothing.
func (h *Host) Close() {
	if h.closed {
		return
	}
	h.inst.Deactivate()
	h.inst.Cleanup()
	h.closed = true

	h.log.WithFields(logrus.Fields{
		"blocks":   h.profiler.Blocks(),
		"cpu_load": h.profiler.Load(),
	}).Debug("host closed")
}
