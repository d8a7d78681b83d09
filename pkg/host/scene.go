package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScene is returned for scenes that cannot be rendered.
var ErrInvalidScene = errors.New("invalid scene")

// Scene is the automation applied during a render.
//
//	controls:
//	  gain: 0.8
//	events:
//	  - at: 1.5
//	    bypass: true
//	  - at: 3
//	    bypass: false
//	    controls: {level: 0.25}
type Scene struct {
	// Controls are plain values applied before the first block, by symbol.
	Controls map[string]float64 `yaml:"controls,omitempty"`
	Events   []Event            `yaml:"events,omitempty"`
}

// Event changes controls at a point in time. It takes effect on the block
// containing that point.
type Event struct {
	At       float64            `yaml:"at"` // seconds from the start
	Bypass   *bool              `yaml:"bypass,omitempty"`
	Controls map[string]float64 `yaml:"controls,omitempty"`
}

// ToggleAt returns bypass events that switch bypass on at the first time,
// off at the second and so on.
func ToggleAt(times ...float64) []Event {
	events := make([]Event, len(times))
	for i, at := range times {
		on := i%2 == 0
		events[i] = Event{At: at, Bypass: &on}
	}
	return events
}

// ParseScene decodes a YAML scene. Unknown keys are rejected. Empty input
// is an empty scene.
func ParseScene(data []byte) (Scene, error) {
	var scene Scene

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scene); err != nil && !errors.Is(err, io.EOF) {
		return Scene{}, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if err := scene.Validate(); err != nil {
		return Scene{}, err
	}
	return scene, nil
}

// LoadScene reads a YAML scene file.
func LoadScene(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, err
	}
	scene, err := ParseScene(data)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	return scene, nil
}

// Marshal encodes the scene as YAML.
func (s Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks event times. Control symbols are checked against the
// plugin when rendering.
func (s Scene) Validate() error {
	for i, e := range s.Events {
		if math.IsNaN(e.At) || math.IsInf(e.At, 0) || e.At < 0 {
			return fmt.Errorf("%w: event %d at %v", ErrInvalidScene, i, e.At)
		}
	}
	return nil
}

// Render processes in with scene automation and returns the output.
func (h *Host) Render(in []float32, scene Scene) ([]float32, error) {
	if h.closed {
		return nil, ErrClosed
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	if err := h.applyControls(scene.Controls); err != nil {
		return nil, err
	}

	events := slices.Clone(scene.Events)
	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})

	out := make([]float32, len(in))
	next := 0
	for start := 0; start < len(in); start += h.blockSize {
		n := min(h.blockSize, len(in)-start)

		for next < len(events) && h.sampleOf(events[next].At) < start+n {
			if err := h.applyEvent(events[next]); err != nil {
				return nil, err
			}
			next++
		}

		h.processBlock(in[start:start+n], out[start:start+n])
	}

	return out, nil
}

func (h *Host) sampleOf(seconds float64) int {
	return int(seconds * h.sampleRate)
}

func (h *Host) applyEvent(e Event) error {
	if e.Bypass != nil {
		if err := h.SetBypass(*e.Bypass); err != nil {
			return err
		}
		h.log.WithFields(logrus.Fields{"at": e.At, "bypass": *e.Bypass}).Debug("bypass event")
	}
	return h.applyControls(e.Controls)
}

func (h *Host) applyControls(controls map[string]float64) error {
	for symbol, value := range controls {
		if err := h.SetControl(symbol, value); err != nil {
			return err
		}
	}
	return nil
}
