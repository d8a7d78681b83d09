package main

import (
	"fmt"
	"maps"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/justyntemme/dod250go/internal/cli"
	"github.com/justyntemme/dod250go/internal/wavio"
	"github.com/justyntemme/dod250go/pkg/dsp/gain"
	"github.com/justyntemme/dod250go/pkg/framework/debug"
	"github.com/justyntemme/dod250go/pkg/host"
	"github.com/justyntemme/dod250go/pkg/plugin"
)

type renderCmd struct {
	Input     string             `arg:"" type:"existingfile" help:"Input WAV file."`
	Output    string             `arg:"" type:"path" help:"Output WAV file (mono)."`
	Scene     string             `type:"existingfile" help:"YAML scene with control values and bypass events."`
	Block     int                `default:"256" help:"Block size in samples."`
	Set       map[string]float64 `help:"Set a control before rendering, e.g. --set gain=0.8."`
	BypassAt  []float64          `name:"bypass-at" help:"Toggle bypass at these times in seconds."`
	Preset    string             `type:"existingfile" help:"Preset file to load before rendering."`
	DryBypass bool               `name:"dry-bypass" help:"Pass the dry signal while bypassed instead of muting."`
	BitDepth  int                `name:"bit-depth" default:"0" help:"Output bit depth; 0 keeps the input's."`
}

func (c *renderCmd) Run(g *Globals) error {
	desc, err := g.descriptor()
	if err != nil {
		return err
	}

	clip, err := wavio.Read(c.Input)
	if err != nil {
		return err
	}

	scene, err := c.scene()
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

	start := time.Now()
	out, err := h.Render(clip.Samples, scene)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	stats := debug.LogBufferStats(debug.Default(), out, "output")

	depth := c.BitDepth
	if depth == 0 {
		depth = clip.BitDepth
	}
	if err := wavio.Write(c.Output, &wavio.Clip{Samples: out, SampleRate: clip.SampleRate, BitDepth: depth}); err != nil {
		return err
	}

	debug.WithFields(logrus.Fields{
		"input":    c.Input,
		"output":   c.Output,
		"elapsed":  elapsed,
		"cpu_load": h.Profiler().Load(),
	}).Info("render complete")

	cli.PrintField(os.Stdout, "Output", c.Output)
	cli.PrintField(os.Stdout, "Duration", fmt.Sprintf("%.2fs", clip.Duration()))
	cli.PrintField(os.Stdout, "Peak", fmt.Sprintf("%.1f dBFS", gain.LinearToDb(float64(stats.Peak))))
	cli.PrintField(os.Stdout, "CPU", fmt.Sprintf("%.2f%% of real time", h.Profiler().Load()))
	return nil
}

// scene merges the scene file with the command-line automation
func (c *renderCmd) scene() (host.Scene, error) {
	var scene host.Scene
	if c.Scene != "" {
		s, err := host.LoadScene(c.Scene)
		if err != nil {
			return host.Scene{}, err
		}
		scene = s
	}

	if len(c.Set) > 0 {
		if scene.Controls == nil {
			scene.Controls = make(map[string]float64, len(c.Set))
		}
		maps.Copy(scene.Controls, c.Set)
	}
	scene.Events = append(scene.Events, host.ToggleAt(c.BypassAt...)...)
	return scene, scene.Validate()
}
