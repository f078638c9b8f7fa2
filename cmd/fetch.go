package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/headlines/internal/pipeline"
	"github.com/matheuskafuri/headlines/internal/rank"
	"github.com/matheuskafuri/headlines/internal/source"
	"github.com/matheuskafuri/headlines/internal/tui"
)

var (
	flagFetchSort string
	flagFetchJSON bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <category>",
	Short: "Print one category's headlines and exit",
	Long: `Fetch a category once and print its headlines to stdout, in page order or sorted.

A page that fails to load prints an empty list; the reason goes to stderr.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: source.Names(),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := source.Parse(args[0])
		if err != nil {
			return err
		}
		var key rank.Key
		if flagFetchSort != "" {
			if key, err = rank.ParseKey(flagFetchSort); err != nil {
				return fmt.Errorf("invalid --sort: %w", err)
			}
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := context.Background()
		d, err := rt.machine.Handle(ctx, pipeline.Select{Source: src})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		if key != "" {
			if d, err = rt.machine.Handle(ctx, pipeline.Sort{Key: key}); err != nil {
				return err
			}
		}

		if flagFetchJSON {
			return writeJSON(cmd.OutOrStdout(), d)
		}
		return writeText(cmd.OutOrStdout(), d)
	},
}

func init() {
	fetchCmd.Flags().StringVar(&flagFetchSort, "sort", "", "sort by views or rating")
	fetchCmd.Flags().BoolVar(&flagFetchJSON, "json", false, "print JSON instead of text")
}

func writeText(w io.Writer, d pipeline.Display) error {
	if _, err := fmt.Fprintln(w, tui.FormatHeader(d.Label, d.FetchedAt)); err != nil {
		return err
	}
	for i, r := range d.Records {
		if _, err := fmt.Fprintln(w, tui.FormatRow(i+1, r)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "    %s\n", r.Link); err != nil {
			return err
		}
	}
	return nil
}

type jsonDisplay struct {
	pipeline.Display
	Category string `json:"category"`
}

func writeJSON(w io.Writer, d pipeline.Display) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(jsonDisplay{Display: d, Category: d.Source.String()})
}
