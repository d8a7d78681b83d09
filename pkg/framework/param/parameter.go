// Package param describes control ports: their ranges, defaults and display
// formatting, and stores their current values for lock-free access.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Parameter describes one control port of a plugin
type Parameter struct {
	ID           uint32 // port index
	Symbol       string // stable identifier used in presets and scenes
	Name         string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64 // normalized
	StepCount    int32
	Flags        uint32

	// Atomic value for lock-free access between UI and audio goroutines
	value atomic.Uint64

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate uint32 = 1 << 0
	IsReadOnly  uint32 = 1 << 1
	IsToggled   uint32 = 1 << 2
	IsHidden    uint32 = 1 << 4
	IsBypass    uint32 = 1 << 16
)

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value (0-1)
func (p *Parameter) SetValue(value float64) {
	if value < 0 || math.IsNaN(value) {
		value = 0
	} else if value > 1 {
		value = 1
	}
	p.value.Store(math.Float64bits(value))
}

// GetPlainValue converts normalized to plain value
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetPlainValue converts plain to normalized value
func (p *Parameter) SetPlainValue(plain float64) {
	p.SetValue(p.Normalize(plain))
}

// DefaultPlain returns the default in the plain range
func (p *Parameter) DefaultPlain() float64 {
	return p.Denormalize(p.DefaultValue)
}

// Reset restores the default value
func (p *Parameter) Reset() {
	p.SetValue(p.DefaultValue)
}

// Toggle flips a toggled parameter between its ends and returns the new
// plain value.
func (p *Parameter) Toggle() float64 {
	if p.GetValue() >= 0.5 {
		p.SetValue(0)
	} else {
		p.SetValue(1)
	}
	return p.GetPlainValue()
}

// FormatValue returns formatted parameter value
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(normalized)

	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	if p.StepCount > 0 {
		return fmt.Sprintf("%.0f", plain)
	}
	return fmt.Sprintf("%.2f", plain)
}

// String formats the current value with its unit
func (p *Parameter) String() string {
	s := p.FormatValue(p.GetValue())
	if p.Unit != "" && p.formatFunc == nil {
		s += " " + p.Unit
	}
	return s
}

// ParseValue parses string to normalized value
func (p *Parameter) ParseValue(str string) (float64, error) {
	parse := p.parseFunc
	if parse == nil {
		parse = func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		}
	}
	plain, err := parse(str)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", p.Symbol, err)
	}
	return p.Normalize(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min || math.IsNaN(plain) {
		return 0
	}
	normalized := (plain - p.Min) / (p.Max - p.Min)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}
