package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/headlines/internal/source"
	"github.com/matheuskafuri/headlines/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	var preselect *source.Source
	if flagSource != "" {
		src, err := source.Parse(flagSource)
		if err != nil {
			return fmt.Errorf("invalid --source: %w", err)
		}
		preselect = &src
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	sources := rt.cfg.EnabledSources()
	if len(sources) == 0 {
		return fmt.Errorf("no categories enabled in config")
	}
	if preselect != nil && !slices.Contains(sources, *preselect) {
		return fmt.Errorf("category %s is disabled in config", preselect)
	}

	return tui.Run(tui.RunOpts{
		Pipeline:  rt.machine,
		Sources:   sources,
		Preselect: preselect,
		Logger:    rt.logger,
	})
}
