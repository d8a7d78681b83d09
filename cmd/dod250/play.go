package main

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justyntemme/dod250go/internal/playback"
	"github.com/justyntemme/dod250go/internal/ui"
	"github.com/justyntemme/dod250go/internal/wavio"
	"github.com/justyntemme/dod250go/pkg/framework/debug"
	"github.com/justyntemme/dod250go/pkg/host"
	"github.com/justyntemme/dod250go/pkg/plugin"
)

type playCmd struct {
	Input     string `arg:"" type:"existingfile" help:"WAV file to loop."`
	Block     int    `default:"256" help:"Block size in samples."`
	Preset    string `type:"existingfile" help:"Preset file to load before playing."`
	SaveTo    string `name:"save-to" type:"path" default:"dod250.preset" help:"Where the s key saves presets."`
	DryBypass bool   `name:"dry-bypass" help:"Pass the dry signal while bypassed instead of muting."`
}

func (c *playCmd) Run(g *Globals) error {
	// stderr belongs to the UI
	if g.LogFile == "" {
		debug.SetEnabled(false)
	}

	desc, err := g.descriptor()
	if err != nil {
		return err
	}
	clip, err := wavio.Read(c.Input)
	if err != nil {
		return err
	}

	var opts []plugin.Option
	if c.DryBypass {
		opts = append(opts, plugin.WithDryBypass())
	}
	h, err := host.New(desc, float64(clip.SampleRate), c.Block, opts...)
	if err != nil {
		return err
	}
	defer h.Close()

	if c.Preset != "" {
		if err := h.LoadPreset(c.Preset); err != nil {
			return err
		}
	}

	player, err := playback.NewPlayer(clip.SampleRate, playback.DefaultLatency)
	if err != nil {
		return err
	}

	e := newEngine(h, clip, c.SaveTo)
	e.stats = player.Stats
	player.Start(c.Block, e.render)

	title := fmt.Sprintf("%s ▸ %s", desc.Info.Name, filepath.Base(c.Input))
	_, runErr := tea.NewProgram(ui.NewModel(title, e)).Run()

	if err := player.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
