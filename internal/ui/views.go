package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/justyntemme/dod250go/pkg/dsp/gain"
	"github.com/justyntemme/dod250go/pkg/framework/bypass"
)

var (
	accentColor = lipgloss.Color("#E07000")
	mutedColor  = lipgloss.Color("#888888")
	goodColor   = lipgloss.Color("#00AA00")
	badColor    = lipgloss.Color("#A40000")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1).
			Width(60)
)

const meterWidth = 30

// renderPlayer renders the playback view
func renderPlayer(m Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n\n")

	var content strings.Builder
	fmt.Fprintf(&content, "State:    %s\n", renderState(m.status.State))
	fmt.Fprintf(&content, "Ramp:     %s\n", renderMeter(float64(m.status.Gain), meterWidth))
	fmt.Fprintf(&content, "Output:   %s %.1f dB\n", renderMeter(float64(m.status.Peak), meterWidth), gain.LinearToDb(float64(m.status.Peak)))
	fmt.Fprintf(&content, "Hold:     %.1f dB\n", gain.LinearToDb(float64(m.status.Hold)))
	fmt.Fprintf(&content, "Position: %s\n", m.status.Position.Truncate(100_000_000))
	fmt.Fprintf(&content, "CPU:      %.1f%%   Underruns: %d", m.status.Load, m.status.Underruns)
	b.WriteString(boxStyle.Render(content.String()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(badColor).Render("Error: " + m.err.Error()))
	case m.message != "":
		b.WriteString(mutedStyle.Render(m.message))
	}
	b.WriteString("\n\n")

	b.WriteString(mutedStyle.Render("space bypass • s save preset • q quit"))
	b.WriteString("\n")
	return b.String()
}

// renderState colours the bypass state
func renderState(s bypass.State) string {
	color := goodColor
	switch s {
	case bypass.Bypassed:
		color = mutedColor
	case bypass.RampingDown, bypass.RampingUp:
		color = accentColor
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(s.String())
}

// renderMeter draws a 0..1 bar
func renderMeter(v float64, width int) string {
	v = max(0, min(1, v))
	filled := int(v * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
