package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects timing statistics for named sections.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	name      string
	count     uint64
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	lastTime  time.Duration
}

// NewProfiler creates an enabled profiler.
func NewProfiler() *Profiler {
	p := &Profiler{
		measurements: make(map[string]*Measurement),
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether profiling is enabled.
func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing a named section.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}

	start := time.Now()

	return func() {
		p.Record(name, time.Since(start))
	}
}

// Time measures the execution time of a function.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record stores a timing measurement.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	if !p.enabled.Load() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{
			name:    name,
			minTime: elapsed,
			maxTime: elapsed,
		}
		p.measurements[name] = m
	}

	m.count++
	m.totalTime += elapsed
	m.lastTime = elapsed
	m.minTime = min(m.minTime, elapsed)
	m.maxTime = max(m.maxTime, elapsed)
}

// GetMeasurement returns a copy of the measurement for a named section.
func (p *Profiler) GetMeasurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return Measurement{}, false
	}
	return *m, true
}

// Names returns the recorded section names, sorted.
func (p *Profiler) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.measurements = make(map[string]*Measurement)
}

// Report generates a performance report.
func (p *Profiler) Report() string {
	names := p.Names()
	if len(names) == 0 {
		return "No measurements recorded"
	}

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	sb.WriteString("==================\n\n")

	for _, name := range names {
		m, _ := p.GetMeasurement(name)
		fmt.Fprintf(&sb, "%s:\n", name)
		fmt.Fprintf(&sb, "  Count:   %d\n", m.count)
		fmt.Fprintf(&sb, "  Total:   %v\n", m.totalTime)
		fmt.Fprintf(&sb, "  Average: %v\n", m.Average())
		fmt.Fprintf(&sb, "  Min:     %v\n", m.minTime)
		fmt.Fprintf(&sb, "  Max:     %v\n", m.maxTime)
		fmt.Fprintf(&sb, "  Last:    %v\n\n", m.lastTime)
	}

	return sb.String()
}

// Count returns how many times the section was recorded.
func (m Measurement) Count() uint64 { return m.count }

// Min returns the shortest recorded time.
func (m Measurement) Min() time.Duration { return m.minTime }

// Max returns the longest recorded time.
func (m Measurement) Max() time.Duration { return m.maxTime }

// Total returns the accumulated time.
func (m Measurement) Total() time.Duration { return m.totalTime }

// Average returns the average time for this measurement.
func (m Measurement) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.count)
}

// blockSection is the section name BlockProfiler records under.
const blockSection = "Run"

// BlockProfiler times plugin Run calls and relates them to the wall-clock
// duration of one block.
type BlockProfiler struct {
	*Profiler
	blockSize  int
	sampleRate float64
}

// NewBlockProfiler creates a profiler for blocks of blockSize samples.
func NewBlockProfiler(sampleRate float64, blockSize int) *BlockProfiler {
	return &BlockProfiler{
		Profiler:   NewProfiler(),
		sampleRate: sampleRate,
		blockSize:  blockSize,
	}
}

// TimeBlock runs fn and records its duration as one block.
func (b *BlockProfiler) TimeBlock(fn func()) {
	b.Time(blockSection, fn)
}

// BlockDuration returns the real-time duration of one block.
func (b *BlockProfiler) BlockDuration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.blockSize) * float64(time.Second) / b.sampleRate)
}

// Blocks returns how many blocks were timed.
func (b *BlockProfiler) Blocks() uint64 {
	m, ok := b.GetMeasurement(blockSection)
	if !ok {
		return 0
	}
	return m.count
}

// Load returns the average processing time as a percentage of the block
// duration.
func (b *BlockProfiler) Load() float64 {
	m, ok := b.GetMeasurement(blockSection)
	d := b.BlockDuration()
	if !ok || m.count == 0 || d == 0 {
		return 0
	}
	return float64(m.Average()) / float64(d) * 100.0
}

// AudioReport generates an audio-specific performance report.
func (b *BlockProfiler) AudioReport() string {
	var sb strings.Builder
	sb.WriteString(b.Report())
	sb.WriteString("\nAudio Processing Stats:\n")
	fmt.Fprintf(&sb, "  Sample Rate:  %.0f Hz\n", b.sampleRate)
	fmt.Fprintf(&sb, "  Block Size:   %d samples\n", b.blockSize)
	fmt.Fprintf(&sb, "  CPU Load:     %.2f%%\n", b.Load())
	return sb.String()
}
