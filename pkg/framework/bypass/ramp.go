// Package bypass implements click-free bypass switching for plugin kernels.
//
// A Ramp watches the host's bypass control once per block and fades the block
// out (or in) over a fixed number of samples before the kernel is skipped (or
// resumed). The kernel keeps running while its signal is being faded, so the
// switch is heard as a short fade instead of a click.
package bypass

// State is the ramp's position in the bypass cycle.
type State int

const (
	// Active passes every block through the kernel untouched.
	Active State = iota
	// RampingDown fades the block towards silence while the kernel still runs.
	RampingDown
	// Bypassed skips the kernel entirely.
	Bypassed
	// RampingUp fades the block back in while the kernel runs.
	RampingUp
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Active:
		return "Active"
	case RampingDown:
		return "RampingDown"
	case Bypassed:
		return "Bypassed"
	case RampingUp:
		return "RampingUp"
	default:
		return "Unknown"
	}
}

// Transition reports what Observe detected on the bypass control.
type Transition int

const (
	// TransitionNone means the control did not change since the last block.
	TransitionNone Transition = iota
	// TransitionToBypass means the control switched from active to bypassed.
	TransitionToBypass
	// TransitionToActive means the control switched from bypassed to active.
	TransitionToActive
)

// String returns the transition name.
func (t Transition) String() string {
	switch t {
	case TransitionNone:
		return "None"
	case TransitionToBypass:
		return "ToBypass"
	case TransitionToActive:
		return "ToActive"
	default:
		return "Unknown"
	}
}

// Decision tells the dispatcher what to do with the kernel for the current block.
type Decision struct {
	// State is the ramp state after the envelope was applied.
	State State
	// ClearKernel is set on the block that completes a down-ramp. The kernel's
	// internal state should be cleared so it resumes from silence later.
	ClearKernel bool
}

// InvokeKernel reports whether the kernel must process this block.
func (d Decision) InvokeKernel() bool {
	return d.State != Bypassed
}

// Reference values for the ramp width: 8192 samples at 48 kHz.
const (
	referenceRate  = 48000
	rampBlocks     = 32
	rampBlockWidth = 256
)

// StepForRate returns the ramp width in samples for a sample rate.
// Integer arithmetic truncates exactly like the host-side computation it
// mirrors; the result is never below one sample.
func StepForRate(sampleRate uint32) float32 {
	step := uint64(rampBlocks) * (uint64(rampBlockWidth) * uint64(sampleRate)) / referenceRate
	if step < 1 {
		step = 1
	}
	return float32(step)
}

// Option configures a Ramp.
type Option func(*Ramp)

// WithDryBypass leaves the dry input in the buffer while bypassed instead of
// muting it.
func WithDryBypass() Option {
	return func(r *Ramp) {
		r.dryBypass = true
	}
}

// Ramp is the bypass ramp controller. It is not safe for concurrent use; the
// host calls it from one audio thread, one block at a time.
type Ramp struct {
	state     State
	requested bool

	downCounter float32
	upCounter   float32
	downStep    float32
	upStep      float32

	dryBypass bool
}

// NewRamp creates a ramp in the Active state. Init must be called before the
// first block.
func NewRamp(opts ...Option) *Ramp {
	r := &Ramp{
		downStep: 1,
		upStep:   1,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.downCounter = r.downStep
	return r
}

// Init derives the ramp width from the sample rate and resets the ramp to
// Active. The width is never recomputed afterwards.
func (r *Ramp) Init(sampleRate uint32) {
	r.downStep = StepForRate(sampleRate)
	r.upStep = r.downStep
	r.downCounter = r.downStep
	r.upCounter = 0
	r.state = Active
	r.requested = false
}

// Observe samples the bypass control for this block. A change rearms the
// counters and starts the matching ramp, overwriting any ramp in progress.
func (r *Ramp) Observe(bypass bool) Transition {
	if bypass == r.requested {
		return TransitionNone
	}
	r.requested = bypass
	r.downCounter = r.downStep
	r.upCounter = 0

	if bypass {
		r.state = RampingDown
		return TransitionToBypass
	}
	r.state = RampingUp
	return TransitionToActive
}

// ApplyEnvelope scales buf according to the current ramp and advances the
// counters. It must be called once per block after Observe.
func (r *Ramp) ApplyEnvelope(buf []float32) Decision {
	switch r.state {
	case RampingDown:
		for i := range buf {
			// The counter may end one below zero; the tiny negative gain on
			// the final samples is accepted.
			if r.downCounter >= 0 {
				r.downCounter--
			}
			buf[i] = buf[i] * r.downCounter / r.downStep
		}
		if r.downCounter <= 0 {
			r.state = Bypassed
			return Decision{State: Bypassed, ClearKernel: true}
		}

	case RampingUp:
		for i := range buf {
			if r.upCounter <= r.upStep {
				r.upCounter++
			}
			buf[i] = buf[i] * r.upCounter / r.upStep
		}
		if r.upCounter >= r.upStep {
			r.state = Active
		}

	case Bypassed:
		if !r.dryBypass {
			clear(buf)
		}
	}

	return Decision{State: r.state}
}

// State returns the current ramp state.
func (r *Ramp) State() State {
	return r.state
}

// IsRampingDown reports whether a down-ramp is in progress.
func (r *Ramp) IsRampingDown() bool {
	return r.state == RampingDown
}

// IsRampingUp reports whether an up-ramp is in progress.
func (r *Ramp) IsRampingUp() bool {
	return r.state == RampingUp
}

// IsBypassed reports whether a down-ramp has completed and the kernel is skipped.
func (r *Ramp) IsBypassed() bool {
	return r.state == Bypassed
}

// Requested returns the last observed bypass control value.
func (r *Ramp) Requested() bool {
	return r.requested
}

// Step returns the ramp width in samples.
func (r *Ramp) Step() float32 {
	return r.downStep
}

// Gain returns the gain factor applied to the most recent sample of the
// current ramp: 1 while active, 0 while bypassed.
func (r *Ramp) Gain() float32 {
	switch r.state {
	case RampingDown:
		return r.downCounter / r.downStep
	case RampingUp:
		return r.upCounter / r.upStep
	case Bypassed:
		return 0
	default:
		return 1
	}
}
