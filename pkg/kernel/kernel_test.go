package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	k := Identity()
	k.SetSampleRate(48000)

	in := []float32{0.1, -0.2, 0.3}
	out := make([]float32, 3)
	k.ProcessBlock(in, out)
	assert.Equal(t, in, out)

	// In place
	k.ProcessBlock(in, in)
	assert.Equal(t, []float32{0.1, -0.2, 0.3}, in)

	k.ClearState()
}

func TestFunc(t *testing.T) {
	double := Func(func(buf []float32) {
		for i := range buf {
			buf[i] *= 2
		}
	})

	in := []float32{1, 2}
	out := make([]float32, 2)
	double.ProcessBlock(in, out)

	assert.Equal(t, []float32{2, 4}, out)
	assert.Equal(t, []float32{1, 2}, in, "input must be left untouched")

	double.ProcessBlock(in, in)
	assert.Equal(t, []float32{2, 4}, in)

	double.ProcessBlock(nil, nil)
}

func TestOptionalCapabilities(t *testing.T) {
	var k Kernel = Identity()

	_, isActivator := k.(Activator)
	_, isConnector := k.(PortConnector)
	assert.False(t, isActivator)
	assert.False(t, isConnector)
}
