// Package kernel defines the contract between the plugin adapter and the
// signal-processing unit it wraps.
//
// A kernel is an opaque mono transform. The adapter only ever asks it to learn
// the sample rate, process a block, and forget its internal state. Optional
// capabilities (memory activation, control port binding) are discovered with
// type assertions so generated and hand-written kernels can implement just
// what they need.
package kernel

// Kernel is the mandatory part of every wrapped DSP unit.
type Kernel interface {
	// SetSampleRate is called once, before any block is processed.
	SetSampleRate(rate uint32)

	// ProcessBlock transforms in into out. in and out may be the same slice
	// and always have the same length. Must not allocate.
	ProcessBlock(in, out []float32)

	// ClearState drops filter memories and any other signal history.
	ClearState()
}

// Activator is implemented by kernels that allocate runtime memory separately
// from construction. Activate(false) must be safe to call repeatedly and
// without a preceding Activate(true).
type Activator interface {
	Activate(start bool)
}

// PortConnector is implemented by kernels that read host-bound ports
// (control values) directly. data is a []float32 for audio ports and a
// *float32 for control ports.
type PortConnector interface {
	ConnectPort(port uint32, data any)
}

// Func adapts a stateless in-place function to a Kernel.
type Func func(buf []float32)

// SetSampleRate implements Kernel.
func (f Func) SetSampleRate(uint32) {}

// ProcessBlock implements Kernel.
func (f Func) ProcessBlock(in, out []float32) {
	if len(in) > 0 && len(out) > 0 && &in[0] != &out[0] {
		copy(out, in)
	}
	f(out)
}

// ClearState implements Kernel.
func (f Func) ClearState() {}

// Identity returns a kernel that passes audio through unchanged.
func Identity() Kernel {
	return Func(func([]float32) {})
}
