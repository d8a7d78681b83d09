package plugin

import (
	"github.com/justyntemme/dod250go/pkg/framework/bypass"
	"github.com/justyntemme/dod250go/pkg/kernel"
)

// Dispatcher runs one block: copy input to output, apply the bypass ramp,
// then invoke the kernel unless the ramp has settled into bypass.
// It never allocates, locks or logs.
type Dispatcher struct {
	ramp   *bypass.Ramp
	kernel kernel.Kernel
}

// NewDispatcher binds a ramp to a kernel.
func NewDispatcher(ramp *bypass.Ramp, k kernel.Kernel) *Dispatcher {
	return &Dispatcher{ramp: ramp, kernel: k}
}

// Process handles n samples. in and out must hold at least n samples;
// they may alias. Any non-zero bypass value (NaN included) means bypassed.
func (d *Dispatcher) Process(in, out []float32, n int, bypassValue float32) bypass.Decision {
	block := out[:n]
	copy(block, in[:n])

	d.ramp.Observe(bypassValue != 0)

	decision := d.ramp.ApplyEnvelope(block)
	if decision.ClearKernel {
		d.kernel.ClearState()
	}
	if decision.InvokeKernel() {
		d.kernel.ProcessBlock(block, block)
	}
	return decision
}

// Ramp returns the bypass ramp.
func (d *Dispatcher) Ramp() *bypass.Ramp {
	return d.ramp
}

// Kernel returns the wrapped kernel.
func (d *Dispatcher) Kernel() kernel.Kernel {
	return d.kernel
}
