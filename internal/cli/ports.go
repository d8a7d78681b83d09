package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/justyntemme/dod250go/pkg/framework/param"
	"github.com/justyntemme/dod250go/pkg/plugin"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// RenderDescriptor describes a plugin and its control ports
func RenderDescriptor(d *plugin.Descriptor) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(d.Info.Name))
	b.WriteString("\n")
	for _, kv := range [][2]string{
		{"URI", d.URI},
		{"Version", d.Info.Version},
		{"Vendor", d.Info.Vendor},
		{"Category", d.Info.Category},
		{"License", d.Info.License},
		{"UID", d.Info.UID().String()},
	} {
		if kv[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", KeyStyle.Render(fmt.Sprintf("%-10s", kv[0]+":")), ValueStyle.Render(kv[1]))
	}
	b.WriteString("\n")

	rows := [][]string{
		{"Port", "Symbol", "Name", "Range", "Default", "Flags"},
		{fmt.Sprint(uint32(plugin.PortOutput)), "out", "Audio Out", "", "", "audio"},
		{fmt.Sprint(uint32(plugin.PortInput)), "in", "Audio In", "", "", "audio"},
	}
	if d.Ports != nil {
		for _, p := range d.Ports.All() {
			rows = append(rows, []string{
				fmt.Sprint(p.ID),
				p.Symbol,
				p.Name,
				fmt.Sprintf("%g..%g", p.Min, p.Max),
				p.FormatValue(p.DefaultValue),
				flagNames(p.Flags),
			})
		}
	}
	b.WriteString(renderTable(rows))
	return b.String()
}

// renderTable pads columns to equal width; the first row is the header
func renderTable(rows [][]string) string {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	for r, row := range rows {
		for i, cell := range row {
			text := fmt.Sprintf("%-*s", widths[i], cell)
			if r == 0 {
				b.WriteString(headerStyle.Inherit(cellStyle).Render(text))
			} else {
				b.WriteString(cellStyle.Render(text))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func flagNames(flags uint32) string {
	var names []string
	for _, f := range []struct {
		bit  uint32
		name string
	}{
		{param.CanAutomate, "automate"},
		{param.IsReadOnly, "readonly"},
		{param.IsToggled, "toggle"},
		{param.IsHidden, "hidden"},
		{param.IsBypass, "bypass"},
	} {
		if flags&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ",")
}
