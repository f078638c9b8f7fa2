package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/source"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List headline categories and their sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return writeSources(cmd.OutOrStdout(), cfg)
	},
}

func writeSources(w io.Writer, cfg *config.Config) error {
	enabled := make(map[source.Source]bool)
	for _, s := range cfg.EnabledSources() {
		enabled[s] = true
	}
	limits := cfg.Limits()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCATEGORY\tSITE\tURL\tCAP\tENABLED")
	for i, s := range source.All() {
		limit := s.Cap()
		if n, ok := limits[s]; ok {
			limit = n
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", i+1, s.Title(), s.Label(), s.URL(), limit, yesNo(enabled[s]))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
