// Package plugin adapts a DSP kernel to an LV2-style host lifecycle:
// instantiate, connect ports, activate, run blocks, deactivate, clean up.
// Bypass switching is ramped so toggling never clicks.
package plugin

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/justyntemme/dod250go/pkg/framework/bypass"
	"github.com/justyntemme/dod250go/pkg/kernel"
)

// Instance is one running plugin. The host drives it from a single
// goroutine; no method is safe for concurrent use.
type Instance struct {
	desc       *Descriptor
	kernel     kernel.Kernel
	ramp       *bypass.Ramp
	dispatcher *Dispatcher

	input  []float32
	output []float32
	bypass *float32

	sampleRate float64
	active     bool
	cleaned    bool
	last       bypass.Decision

	log *logrus.Entry
}

// Instantiate creates an instance of d running at sampleRate.
func Instantiate(d *Descriptor, sampleRate float64, opts ...Option) (*Instance, error) {
	if d == nil {
		return nil, ErrNilDescriptor
	}
	if d.New == nil {
		return nil, fmt.Errorf("%s: %w", d.URI, ErrNoKernel)
	}
	if math.IsNaN(sampleRate) || sampleRate < 1 || sampleRate > math.MaxUint32 {
		return nil, fmt.Errorf("%s: %w: %v", d.URI, ErrInvalidSampleRate, sampleRate)
	}

	k := d.New()
	if k == nil {
		return nil, fmt.Errorf("%s: factory returned nil: %w", d.URI, ErrNoKernel)
	}

	cfg := resolveConfig(opts)
	var rampOpts []bypass.Option
	if cfg.DryBypass {
		rampOpts = append(rampOpts, bypass.WithDryBypass())
	}

	rate := uint32(sampleRate)
	ramp := bypass.NewRamp(rampOpts...)
	ramp.Init(rate)
	k.SetSampleRate(rate)

	inst := &Instance{
		desc:       d,
		kernel:     k,
		ramp:       ramp,
		dispatcher: NewDispatcher(ramp, k),
		sampleRate: sampleRate,
		last:       bypass.Decision{State: bypass.Active},
		log:        cfg.Logger.WithField("uri", d.URI),
	}

	inst.log.WithFields(logrus.Fields{
		"function":    "Instantiate",
		"sample_rate": sampleRate,
		"ramp_step":   ramp.Step(),
		"dry_bypass":  cfg.DryBypass,
	}).Info("instance created")

	return inst, nil
}

// ConnectPort binds data to a port. Audio ports take a []float32, control
// ports a *float32; nil unbinds. Every port is forwarded to the kernel when
// it implements kernel.PortConnector.
func (i *Instance) ConnectPort(port PortIndex, data any) {
	if i.cleaned {
		return
	}

	switch port {
	case PortOutput:
		i.output, _ = data.([]float32)
	case PortInput:
		i.input, _ = data.([]float32)
	case PortBypass:
		i.bypass, _ = data.(*float32)
	}

	if pc, ok := i.kernel.(kernel.PortConnector); ok {
		pc.ConnectPort(uint32(port), data)
	}
}

// Activate prepares the kernel for processing.
func (i *Instance) Activate() {
	if i.cleaned || i.active {
		return
	}
	if a, ok := i.kernel.(kernel.Activator); ok {
		a.Activate(true)
	}
	i.active = true
	i.log.WithField("function", "Activate").Debug("activated")
}

// Run processes n samples from the input port into the output port. An
// unbound bypass port reads as active. Unbound or short audio ports leave
// everything untouched.
func (i *Instance) Run(n uint32) {
	if n == 0 || uint64(len(i.input)) < uint64(n) || uint64(len(i.output)) < uint64(n) {
		return
	}

	var bypassValue float32
	if i.bypass != nil {
		bypassValue = *i.bypass
	}

	i.last = i.dispatcher.Process(i.input, i.output, int(n), bypassValue)
}

// Deactivate releases the kernel's runtime memory. Calling it twice, or
// without Activate, does nothing.
func (i *Instance) Deactivate() {
	if !i.active {
		return
	}
	if a, ok := i.kernel.(kernel.Activator); ok {
		a.Activate(false)
	}
	i.active = false
	i.log.WithField("function", "Deactivate").Debug("deactivated")
}

// Cleanup deactivates and drops every binding. The instance is unusable
// afterwards; further calls are no-ops.
func (i *Instance) Cleanup() {
	if i.cleaned {
		return
	}
	i.Deactivate()
	i.input, i.output, i.bypass = nil, nil, nil
	i.cleaned = true
	i.log.WithField("function", "Cleanup").Info("instance released")
}

// Descriptor returns the descriptor the instance was created from.
func (i *Instance) Descriptor() *Descriptor {
	return i.desc
}

// Kernel returns the wrapped kernel.
func (i *Instance) Kernel() kernel.Kernel {
	return i.kernel
}

// Ramp returns the bypass ramp.
func (i *Instance) Ramp() *bypass.Ramp {
	return i.ramp
}

// State returns the bypass state after the last block.
func (i *Instance) State() bypass.State {
	return i.ramp.State()
}

// LastDecision returns what the dispatcher decided for the last block.
func (i *Instance) LastDecision() bypass.Decision {
	return i.last
}

// SampleRate returns the rate the instance was created with.
func (i *Instance) SampleRate() float64 {
	return i.sampleRate
}

// Active reports whether Activate was called without a matching Deactivate.
func (i *Instance) Active() bool {
	return i.active
}
