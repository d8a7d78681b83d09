// Package ui provides the Bubbletea terminal user interface for live playback
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justyntemme/dod250go/pkg/framework/bypass"
)

// refreshInterval is how often the view polls the controller
const refreshInterval = 50 * time.Millisecond

// Status is a snapshot of the running plugin
type Status struct {
	State     bypass.State
	Gain      float32 // ramp gain on the last sample
	Bypass    bool    // requested bypass setting
	Position  time.Duration
	Peak      float32 // decaying output peak
	Hold      float32 // held output maximum
	Load      float64 // percent of the block duration spent in Run
	Underruns uint64
}

// Controller is the playback engine as seen from the UI. Methods are called
// from the UI goroutine.
type Controller interface {
	ToggleBypass() (bool, error)
	SavePreset() (string, error)
	Status() Status
}

// Model is the Bubbletea model for the playback view
type Model struct {
	Title  string
	ctrl   Controller
	status Status

	message string
	err     error

	Width    int
	Quitting bool
}

// NewModel creates a model showing title and driving ctrl
func NewModel(title string, ctrl Controller) Model {
	return Model{
		Title:  title,
		ctrl:   ctrl,
		status: ctrl.Status(),
	}
}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles key presses and refresh ticks
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		case " ", "b":
			on, err := m.ctrl.ToggleBypass()
			m.err = err
			if err == nil {
				m.message = "bypass " + onOff(on)
			}
			m.status = m.ctrl.Status()
		case "s":
			return m, savePreset(m.ctrl)
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case tickMsg:
		m.status = m.ctrl.Status()
		return m, tick()

	case presetSavedMsg:
		m.err = msg.Error
		if msg.Error == nil {
			m.message = "preset saved to " + msg.Path
		}
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	return renderPlayer(m)
}

// Status returns the last polled snapshot
func (m Model) Status() Status {
	return m.status
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func savePreset(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		path, err := ctrl.SavePreset()
		return presetSavedMsg{Path: path, Error: err}
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
