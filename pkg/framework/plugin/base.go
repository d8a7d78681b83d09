package plugin

import (
	"github.com/justyntemme/dod250go/pkg/framework/param"
	"github.com/justyntemme/dod250go/pkg/framework/state"
)

// Base provides the metadata and port table every plugin descriptor carries
type Base struct {
	Info  Info
	ports *param.Registry
}

// NewBase creates a new plugin base. A nil registry is replaced by an empty one.
func NewBase(info Info, ports *param.Registry) *Base {
	if ports == nil {
		ports = param.NewRegistry()
	}
	return &Base{
		Info:  info,
		ports: ports,
	}
}

// Ports returns the control port table
func (b *Base) Ports() *param.Registry {
	return b.ports
}

// Presets returns a state manager bound to ports, which may be the shared
// table or a per-instance clone of it.
func (b *Base) Presets(ports *param.Registry) *state.Manager {
	if ports == nil {
		ports = b.ports
	}
	return state.NewManager(b.Info.URI, ports)
}
