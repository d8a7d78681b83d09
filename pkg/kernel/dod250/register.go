package dod250

import (
	"github.com/justyntemme/dod250go/pkg/framework/plugin"
	"github.com/justyntemme/dod250go/pkg/kernel"
	lv2 "github.com/justyntemme/dod250go/pkg/plugin"
)

// URI identifies the plugin.
const URI = "urn:dod250go:plugins#_DOD250_"

// Info describes the plugin.
var Info = plugin.Info{
	URI:      URI,
	Name:     "DOD 250 Overdrive",
	Version:  "0.1.0",
	Vendor:   "dod250go",
	Category: "DistortionPlugin",
	License:  "GPL-2.0-or-later",
}

// Descriptor returns a new descriptor for the plugin.
func Descriptor() *lv2.Descriptor {
	return &lv2.Descriptor{
		URI:   URI,
		Info:  Info,
		Ports: Ports(),
		New: func() kernel.Kernel {
			return New()
		},
	}
}

func init() {
	lv2.Register(Descriptor())
}
