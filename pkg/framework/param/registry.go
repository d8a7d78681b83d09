package param

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateParameter is returned when a port index or symbol is registered twice
var ErrDuplicateParameter = errors.New("duplicate parameter")

// Registry manages the control ports of a plugin
type Registry struct {
	params   map[uint32]*Parameter
	bySymbol map[string]*Parameter
	order    []uint32 // Maintain order for indexed access
	mu       sync.RWMutex
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params:   make(map[uint32]*Parameter),
		bySymbol: make(map[string]*Parameter),
	}
}

// Add registers parameters. Nothing is added if any of them collides with
// an existing port index or symbol.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seenID := make(map[uint32]bool, len(params))
	seenSym := make(map[string]bool, len(params))
	for _, p := range params {
		if _, exists := r.params[p.ID]; exists || seenID[p.ID] {
			return fmt.Errorf("port %d: %w", p.ID, ErrDuplicateParameter)
		}
		if _, exists := r.bySymbol[p.Symbol]; exists || seenSym[p.Symbol] {
			return fmt.Errorf("symbol %q: %w", p.Symbol, ErrDuplicateParameter)
		}
		seenID[p.ID] = true
		seenSym[p.Symbol] = true
	}

	for _, p := range params {
		r.params[p.ID] = p
		r.bySymbol[p.Symbol] = p
		r.order = append(r.order, p.ID)
	}

	return nil
}

// MustAdd is Add for static tables built at load time
func (r *Registry) MustAdd(params ...*Parameter) *Registry {
	if err := r.Add(params...); err != nil {
		panic(err)
	}
	return r
}

// Get retrieves a parameter by port index
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// BySymbol retrieves a parameter by symbol
func (r *Registry) BySymbol(symbol string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.bySymbol[symbol]
}

// GetByIndex retrieves a parameter by registration order
func (r *Registry) GetByIndex(index int) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.order) {
		return nil
	}

	return r.params[r.order[index]]
}

// Count returns the number of parameters
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}

	return result
}

// Bypass returns the parameter flagged as bypass, or nil
func (r *Registry) Bypass() *Parameter {
	for _, p := range r.All() {
		if p.Flags&IsBypass != 0 {
			return p
		}
	}
	return nil
}

// ResetAll restores every default
func (r *Registry) ResetAll() {
	for _, p := range r.All() {
		p.Reset()
	}
}

// Clone returns an independent registry with the same ports and current
// values, so each plugin instance can own its control values.
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	for _, p := range r.All() {
		c := &Parameter{
			ID:           p.ID,
			Symbol:       p.Symbol,
			Name:         p.Name,
			Unit:         p.Unit,
			Min:          p.Min,
			Max:          p.Max,
			DefaultValue: p.DefaultValue,
			StepCount:    p.StepCount,
			Flags:        p.Flags,
			formatFunc:   p.formatFunc,
			parseFunc:    p.parseFunc,
		}
		c.SetValue(p.GetValue())
		clone.params[c.ID] = c
		clone.bySymbol[c.Symbol] = c
		clone.order = append(clone.order, c.ID)
	}
	return clone
}
