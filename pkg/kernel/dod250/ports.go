package dod250

import (
	"github.com/justyntemme/dod250go/pkg/framework/param"
)

// Port indices. 0..2 are the adapter's audio and bypass ports.
const (
	PortOutput uint32 = iota
	PortInput
	PortBypass
	PortLevel
	PortGain
)

// Ports returns a fresh control port table.
func Ports() *param.Registry {
	return param.NewRegistry().MustAdd(
		param.BypassParameter(PortBypass, "Bypass").Build(),
		param.LevelParameter(PortLevel, "Level", minLevelDB, maxLevelDB, DefaultLevel).Build(),
		param.KnobParameter(PortGain, "Gain", DefaultGain).Build(),
	)
}
