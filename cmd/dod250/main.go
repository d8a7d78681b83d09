package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/justyntemme/dod250go/internal/cli"
	"github.com/justyntemme/dod250go/pkg/framework/debug"
	"github.com/justyntemme/dod250go/pkg/kernel/dod250"
	"github.com/justyntemme/dod250go/pkg/plugin"
)

var version = "0.1.0"

// Globals are the flags shared by every command
type Globals struct {
	LogLevel string           `name:"log-level" default:"warn" enum:"debug,info,warn,error,off" help:"Log verbosity."`
	LogFile  string           `name:"log-file" type:"path" help:"Append JSON log records to this file instead of stderr."`
	Plugin   string           `default:"${plugin}" help:"URI of the plugin to load."`
	Version  kong.VersionFlag `short:"v" help:"Show version information."`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Render renderCmd `cmd:"" help:"Render a WAV file through the plugin."`
	Play   playCmd   `cmd:"" help:"Loop a WAV file through the plugin to the audio device."`
	Info   infoCmd   `cmd:"" help:"List registered plugins and their ports."`
}

func main() {
	var args CLI
	ctx := kong.Parse(&args,
		kong.Name("dod250"),
		kong.Description("DOD 250 overdrive with click-free bypass"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
			"plugin":  dod250.URI,
		},
		kong.Help(cli.StyledHelpPrinter),
	)

	closeLog, err := args.Globals.setupLogging()
	if err == nil {
		err = ctx.Run(&args.Globals)
		closeLog()
	}
	if err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging applies the log flags to the default logger
func (g *Globals) setupLogging() (func(), error) {
	level, err := debug.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}
	debug.SetLevel(level)
	debug.SetEnabled(level != debug.LogLevelOff)

	if g.LogFile == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(g.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	debug.SetOutput(f)
	debug.Default().SetJSON(true)
	return func() { f.Close() }, nil
}

// descriptor resolves the --plugin flag
func (g *Globals) descriptor() (*plugin.Descriptor, error) {
	return plugin.Find(g.Plugin)
}
