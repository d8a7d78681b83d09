package main

import (
	"fmt"
	"os"

	"github.com/justyntemme/dod250go/internal/cli"
	"github.com/justyntemme/dod250go/pkg/plugin"
)

type infoCmd struct {
	All bool `help:"List every registered plugin instead of the selected one."`
}

func (c *infoCmd) Run(g *Globals) error {
	if !c.All {
		desc, err := g.descriptor()
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, cli.RenderDescriptor(desc))
		return nil
	}

	for i := 0; ; i++ {
		desc := plugin.Lookup(i)
		if desc == nil {
			return nil
		}
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprint(os.Stdout, cli.RenderDescriptor(desc))
	}
}
