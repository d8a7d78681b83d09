package plugin

import (
	"fmt"
	"sync"

	fw "github.com/justyntemme/dod250go/pkg/framework/plugin"
	"github.com/justyntemme/dod250go/pkg/framework/param"
	"github.com/justyntemme/dod250go/pkg/framework/state"
	"github.com/justyntemme/dod250go/pkg/kernel"
)

// Descriptor is the static description of one plugin type
type Descriptor struct {
	URI   string
	Info  fw.Info
	Ports *param.Registry      // control port metadata
	New   func() kernel.Kernel // kernel factory
}

// Presets returns a state manager for ports. A nil ports uses the
// descriptor's shared table.
func (d *Descriptor) Presets(ports *param.Registry) *state.Manager {
	return fw.NewBase(d.Info, d.Ports).Presets(ports)
}

var (
	descriptors   []*Descriptor
	descriptorsMu sync.RWMutex
)

// Register appends d to the descriptor table. It is meant to be called from
// package init functions; registering a URI twice panics.
func Register(d *Descriptor) {
	if d == nil {
		panic(ErrNilDescriptor)
	}
	if d.Info.URI == "" {
		d.Info.URI = d.URI
	}

	descriptorsMu.Lock()
	defer descriptorsMu.Unlock()

	for _, existing := range descriptors {
		if existing.URI == d.URI {
			panic(fmt.Sprintf("plugin: %s registered twice", d.URI))
		}
	}
	descriptors = append(descriptors, d)
}

// Lookup returns the descriptor at index, or nil past the end of the table
func Lookup(index int) *Descriptor {
	descriptorsMu.RLock()
	defer descriptorsMu.RUnlock()

	if index < 0 || index >= len(descriptors) {
		return nil
	}
	return descriptors[index]
}

// Find returns the descriptor registered under uri
func Find(uri string) (*Descriptor, error) {
	descriptorsMu.RLock()
	defer descriptorsMu.RUnlock()

	for _, d := range descriptors {
		if d.URI == uri {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, uri)
}

// Descriptors returns a copy of the descriptor table
func Descriptors() []*Descriptor {
	descriptorsMu.RLock()
	defer descriptorsMu.RUnlock()

	return append([]*Descriptor(nil), descriptors...)
}
