// Package plugin holds the static description shared by every instance of a
// plugin: its metadata and its control ports.
package plugin

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidInfo is returned by Validate
var ErrInvalidInfo = errors.New("invalid plugin info")

// Info contains plugin metadata
type Info struct {
	URI      string // Unique plugin identifier (e.g., "urn:dod250go:plugins#_DOD250_")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "DistortionPlugin")
	License  string
}

// Validate checks that the URI is absolute and the name is set
func (i Info) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidInfo)
	}
	u, err := url.Parse(i.URI)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInfo, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("%w: uri %q is not absolute", ErrInvalidInfo, i.URI)
	}
	return nil
}

// UID derives a stable identifier from the URI, for hosts that key plugins
// by 16-byte class IDs.
func (i Info) UID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(i.URI))
}

// String returns "Name Version (URI)"
func (i Info) String() string {
	if i.Version == "" {
		return fmt.Sprintf("%s (%s)", i.Name, i.URI)
	}
	return fmt.Sprintf("%s %s (%s)", i.Name, i.Version, i.URI)
}
