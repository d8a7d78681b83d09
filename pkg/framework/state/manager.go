// Package state saves and restores control port values as presets.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/justyntemme/dod250go/pkg/framework/param"
)

const (
	magic          = "DOD250"
	currentVersion = 2
	maxURILength   = 4096
)

// Errors returned by Load.
var (
	ErrInvalidFormat  = errors.New("invalid state format")
	ErrNewerVersion   = errors.New("state version is newer than supported")
	ErrPluginMismatch = errors.New("state belongs to another plugin")
)

// Manager handles plugin state saving and loading
type Manager struct {
	version  uint32
	uri      string
	registry *param.Registry
	save     CustomSaveFunc
	load     CustomLoadFunc
}

// CustomSaveFunc allows plugins to save additional state beyond parameters
type CustomSaveFunc func(w io.Writer) error

// CustomLoadFunc reads back what the matching CustomSaveFunc wrote
type CustomLoadFunc func(r io.Reader) error

// NewManager creates a state manager for the plugin identified by uri
func NewManager(uri string, registry *param.Registry) *Manager {
	return &Manager{
		version:  currentVersion,
		uri:      uri,
		registry: registry,
	}
}

// SetCustomState sets the functions for saving and loading custom state
func (m *Manager) SetCustomState(save CustomSaveFunc, load CustomLoadFunc) {
	m.save = save
	m.load = load
}

// Save writes the plugin state to a writer
func (m *Manager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.uri))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, m.uri); err != nil {
		return err
	}

	params := m.registry.All()
	if err := binary.Write(w, binary.LittleEndian, int32(len(params))); err != nil {
		return err
	}
	for _, p := range params {
		if err := binary.Write(w, binary.LittleEndian, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return err
		}
	}

	if m.save == nil {
		return binary.Write(w, binary.LittleEndian, uint32(0))
	}

	// Custom data is length-prefixed so readers without a loader can skip it
	var custom bytes.Buffer
	if err := m.save(&custom); err != nil {
		return fmt.Errorf("custom state: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(custom.Len())); err != nil {
		return err
	}
	_, err := w.Write(custom.Bytes())
	return err
}

// Load reads the plugin state from a reader. Unknown parameters are ignored.
// Values are applied only after the whole state was read successfully.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if string(header) != magic {
		return ErrInvalidFormat
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if version > m.version {
		return fmt.Errorf("%w: %d > %d", ErrNewerVersion, version, m.version)
	}

	// Version 1 carried no plugin URI
	if version >= 2 {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if n > maxURILength {
			return fmt.Errorf("%w: uri length %d", ErrInvalidFormat, n)
		}
		uri := make([]byte, n)
		if _, err := io.ReadFull(r, uri); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if string(uri) != m.uri {
			return fmt.Errorf("%w: %s", ErrPluginMismatch, uri)
		}
	}

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative parameter count", ErrInvalidFormat)
	}

	type entry struct {
		id    uint32
		value float64
	}
	entries := make([]entry, 0, min(int(count), 256))
	for i := int32(0); i < count; i++ {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e.id); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &e.value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		entries = append(entries, e)
	}

	var customLen uint32
	if err := binary.Read(r, binary.LittleEndian, &customLen); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if customLen > 0 {
		custom := io.LimitReader(r, int64(customLen))
		if m.load != nil {
			if err := m.load(custom); err != nil {
				return fmt.Errorf("custom state: %w", err)
			}
		}
		if _, err := io.Copy(io.Discard, custom); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if p := m.registry.Get(e.id); p != nil {
			p.SetValue(e.value)
		}
	}
	return nil
}

// SaveFile writes the state to path
func (m *Manager) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// LoadFile reads the state from path
func (m *Manager) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Load(f)
}
