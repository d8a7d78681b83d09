package plugin

// PortIndex identifies a port of an instance
type PortIndex uint32

// Ports handled by the adapter itself. Every port, these included, is also
// forwarded to kernels implementing kernel.PortConnector.
const (
	PortOutput PortIndex = iota // audio out, []float32
	PortInput                   // audio in, []float32
	PortBypass                  // control, *float32
)

// String returns the port role name.
func (p PortIndex) String() string {
	switch p {
	case PortOutput:
		return "output"
	case PortInput:
		return "input"
	case PortBypass:
		return "bypass"
	default:
		return "kernel"
	}
}
