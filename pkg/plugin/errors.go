package plugin

import "errors"

// Construction errors returned by Instantiate. No partial instance is ever
// returned alongside them.
var (
	ErrNilDescriptor     = errors.New("nil descriptor")
	ErrNoKernel          = errors.New("descriptor has no kernel factory")
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrUnknownPlugin     = errors.New("unknown plugin")
)
