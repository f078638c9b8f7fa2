package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/history"
)

var (
	flagPruneOlderThan string
	flagHistorySince   string
	flagHistorySource  []string
	flagHistoryLimit   int
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the fetch history",
	Long: `Delete fetch history older than the retention period and reclaim disk space.

Uses the retention value from config (default: 30d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := config.ParseDuration(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		j, err := history.Open(config.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer j.Close()

		deleted, err := j.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		out := cmd.OutOrStdout()
		if deleted == 0 {
			fmt.Fprintln(out, "Nothing to prune.")
		} else {
			fmt.Fprintf(out, "Pruned %d fetch(es) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fetch history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := history.Open(config.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer j.Close()

		st, err := j.Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}
		return writeStats(cmd.OutOrStdout(), st)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent fetches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := history.QueryOpts{Sources: flagHistorySource, Limit: flagHistoryLimit}
		if flagHistorySince != "" {
			d, err := config.ParseDuration(flagHistorySince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			opts.Since = time.Now().Add(-d)
		}

		j, err := history.Open(config.HistoryPath())
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer j.Close()

		entries, err := j.Entries(opts)
		if err != nil {
			return fmt.Errorf("reading history: %w", err)
		}
		return writeEntries(cmd.OutOrStdout(), entries)
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 7d, 72h)")
	historyCmd.Flags().StringVar(&flagHistorySince, "since", "", "only show fetches newer than this (e.g., 1d, 2h)")
	historyCmd.Flags().StringSliceVar(&flagHistorySource, "source", nil, "only show these categories")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 50, "maximum entries to show")
}

func writeStats(w io.Writer, st history.Stats) error {
	fmt.Fprintf(w, "History: %s\n", st.Path)
	fmt.Fprintf(w, "Fetches: %s\n", humanize.Comma(int64(st.Entries)))
	fmt.Fprintf(w, "Size: %s\n", humanize.Bytes(uint64(st.Size)))
	if len(st.Sources) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tFETCHES\tFAILURES\tAVG ITEMS\tLAST")
	for _, s := range st.Sources {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%s\n", s.Source, s.Fetches, s.Failures, s.AvgItems, humanize.Time(s.Last))
	}
	return tw.Flush()
}

func writeEntries(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No fetches recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tCATEGORY\tEVENT\tITEMS\tOUTCOME\tTOOK")
	for _, e := range entries {
		outcome := string(e.Outcome)
		if e.Error != "" {
			outcome += ": " + e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			humanize.Time(e.At), e.Source, e.Event, e.Items, outcome, e.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func formatDuration(d time.Duration) string {
	h := d.Hours()
	if days := int(h / 24); days > 0 && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", days)
	}
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(h))
	}
	return d.String()
}
