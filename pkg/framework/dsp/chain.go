// Package dsp provides chain building for mono DSP kernels.
package dsp

import (
	"errors"
	"fmt"
)

// Processor represents a DSP stage that can be chained.
type Processor interface {
	// Process processes audio in-place
	Process(buffer []float32)

	// Reset clears the stage's signal history
	Reset()
}

// ProcessorFunc allows using a stateless function as a Processor.
type ProcessorFunc func([]float32)

func (f ProcessorFunc) Process(buffer []float32) {
	f(buffer)
}

func (f ProcessorFunc) Reset() {}

// Chain runs a fixed sequence of stages over the same buffer.
type Chain struct {
	stages []namedProcessor
	name   string
}

// NewChain creates a new empty chain.
func NewChain(name string) *Chain {
	return &Chain{name: name}
}

// Add appends a stage to the chain.
func (c *Chain) Add(name string, processor Processor) *Chain {
	c.stages = append(c.stages, namedProcessor{name: name, processor: processor})
	return c
}

// AddFunc appends a stateless processing function to the chain.
func (c *Chain) AddFunc(name string, process func([]float32)) *Chain {
	return c.Add(name, ProcessorFunc(process))
}

// Process runs every stage in order. No allocations.
func (c *Chain) Process(buffer []float32) {
	for i := range c.stages {
		c.stages[i].processor.Process(buffer)
	}
}

// Reset resets all stages.
func (c *Chain) Reset() {
	for i := range c.stages {
		c.stages[i].processor.Reset()
	}
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return c.name
}

// Names returns the stage names in processing order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.name
	}
	return names
}

// Count returns the number of stages.
func (c *Chain) Count() int {
	return len(c.stages)
}

type namedProcessor struct {
	name      string
	processor Processor
}

// Builder provides a fluent API for building chains.
type Builder struct {
	chain *Chain
	errs  []error
}

// NewBuilder creates a new chain builder.
func NewBuilder(name string) *Builder {
	return &Builder{chain: NewChain(name)}
}

// WithProcessor adds a stage to the chain.
func (b *Builder) WithProcessor(name string, processor Processor) *Builder {
	if processor == nil {
		b.errs = append(b.errs, fmt.Errorf("stage %q: processor cannot be nil", name))
		return b
	}
	b.chain.Add(name, processor)
	return b
}

// WithFunc adds a processing function to the chain.
func (b *Builder) WithFunc(name string, process func([]float32)) *Builder {
	if process == nil {
		b.errs = append(b.errs, fmt.Errorf("stage %q: process function cannot be nil", name))
		return b
	}
	b.chain.AddFunc(name, process)
	return b
}

// ErrEmptyChain is returned by Build when no stage was added.
var ErrEmptyChain = errors.New("chain is empty")

// Build returns the chain or the joined build errors.
func (b *Builder) Build() (*Chain, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("chain %s: %w", b.chain.name, errors.Join(b.errs...))
	}
	if b.chain.Count() == 0 {
		return nil, fmt.Errorf("chain %s: %w", b.chain.name, ErrEmptyChain)
	}
	return b.chain, nil
}
