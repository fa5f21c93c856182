package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/pipeline"
)

// sortCommand creates the sort command for printing threaded feeds.
func (c *CLI) sortCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		format  string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "sort [source]",
		Short: "Sort a flat feed into threaded display order",
		Long: `Sort a flat feed into threaded display order.

The source may be a local JSON or YAML file, an http(s) URL, or a
database DSN (sqlite://, mongodb://). Replies are grouped under the records
they answer, depth-first, with siblings in the chosen order. Records
whose parent is missing are dropped silently; use 'lint' to see them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			applyConfig(cmd, &opts, c.Config)
			if !cmd.Flags().Changed("format") && c.Config.Format != "" {
				format = c.Config.Format
			}
			if format != feed.FormatText && format != feed.FormatJSON {
				return fmt.Errorf("sort writes text or json, got %q", format)
			}
			opts.Formats = []string{format}
			return c.runSort(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&format, "format", "f", feed.FormatText, "output format: text (default), json")
	cmd.Flags().StringVar(&opts.Order, "order", "", "sibling order: oldest (default), newest, top")
	cmd.Flags().StringVar(&opts.Style, "style", "", "text style: plain (default), color")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "cap displayed nesting depth (0 = uncapped)")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "truncate text lines to this many cells (0 = off)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached data and fetch fresh")
	cmd.Flags().StringVar(&opts.Title, "title", "", "override the feed title")
	cmd.Flags().StringVar(&opts.Collection, "collection", "", "table or collection for database sources")
	cmd.Flags().IntVar(&opts.MaxRecords, "max-records", 0, "cap loaded records (0 = default, negative = no cap)")

	return cmd
}

// runSort executes the pipeline and writes the sorted entries. Without
// --output the artifact goes to stdout undecorated so it can be piped.
func (c *CLI) runSort(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Threading feed...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Threading failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	artifact := result.Artifacts[opts.Formats[0]]
	if output == "" {
		_, err := os.Stdout.Write(artifact)
		return err
	}

	if err := os.WriteFile(output, artifact, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Sorted %d records", result.Stats.RecordCount)
	printFile(output)
	printStats(result.Stats.RecordCount, len(result.Entries), result.CacheInfo.ThreadHit)
	if dropped := result.Report.Dropped(); dropped > 0 {
		printWarning("%d records dropped (dangling or cyclic parents)", dropped)
		printNextStep("Inspect", "threadline lint "+opts.Source)
	}

	return nil
}
