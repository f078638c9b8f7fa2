package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/headlines/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig       string
	flagEngine       string
	flagSource       string
	flagVersionCheck bool
)

var rootCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Terminal headline browser",
	Long: `headlines pulls the latest headlines from ESPN, Investing.com, the BBC and Health.com
into one terminal view. Pick a category, sort by views or rating, refresh, and open stories in your browser.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagEngine, "engine", "", "page engine: chrome or http (overrides config)")
	rootCmd.Flags().StringVar(&flagSource, "source", "", "category to show on launch (sports, finance, politics, health)")

	versionCmd.Flags().BoolVar(&flagVersionCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "headlines %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagVersionCheck {
			return nil
		}
		res, err := update.Check(context.Background(), nil, update.ReleasesURL, version)
		if err != nil {
			return err
		}
		if res.Newer() {
			fmt.Fprintf(out, "A newer release is available: %s\n", res.Latest)
		} else {
			fmt.Fprintln(out, "You are up to date.")
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
