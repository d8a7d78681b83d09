package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var helpDescStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	Italic(true)

// StyledHelpPrinter prints a styled banner above kong's default help
func StyledHelpPrinter(options kong.HelpOptions, ctx *kong.Context) error {
	fmt.Fprintln(ctx.Stdout, TitleStyle.Render("dod250"))
	fmt.Fprintln(ctx.Stdout, helpDescStyle.Render("DOD 250 overdrive with click-free bypass"))
	fmt.Fprintln(ctx.Stdout)
	return kong.DefaultHelpPrinter(options, ctx)
}
