package plugin

import (
	"github.com/justyntemme/dod250go/pkg/kernel"
)

// recordingKernel counts every call the adapter makes and scales by gain.
type recordingKernel struct {
	rate      uint32
	gain      float32
	processed int
	cleared   int
	activated []bool
	ports     map[uint32]any
}

func newRecordingKernel() *recordingKernel {
	return &recordingKernel{gain: 1, ports: make(map[uint32]any)}
}

func (k *recordingKernel) SetSampleRate(rate uint32) { k.rate = rate }

func (k *recordingKernel) ProcessBlock(in, out []float32) {
	k.processed++
	for i := range out {
		out[i] = in[i] * k.gain
	}
}

func (k *recordingKernel) ClearState() { k.cleared++ }

func (k *recordingKernel) Activate(start bool) { k.activated = append(k.activated, start) }

func (k *recordingKernel) ConnectPort(port uint32, data any) { k.ports[port] = data }

// testDescriptor wraps k in an unregistered descriptor.
func testDescriptor(k kernel.Kernel) *Descriptor {
	return &Descriptor{
		URI: "urn:dod250go:test#recording",
		New: func() kernel.Kernel { return k },
	}
}

func filled(n int, v float32) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}
