package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/pipeline"
)

// lintCommand creates the lint command for reporting structural problems.
func (c *CLI) lintCommand() *cobra.Command {
	var (
		strict  bool
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "lint [source]",
		Short: "Report structural problems in a feed",
		Long: `Report structural problems in a feed.

Lint finds what threading silently drops or tolerates: records whose
parent id does not exist, duplicate ids, records naming themselves as
parent, and reply cycles. Findings are advisory; sorting never fails
because of them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			applyConfig(cmd, &opts, c.Config)
			return c.runLint(cmd.Context(), opts, strict, noCache)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit nonzero when findings exist")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached data and fetch fresh")
	cmd.Flags().StringVar(&opts.Collection, "collection", "", "table or collection for database sources")
	cmd.Flags().IntVar(&opts.MaxRecords, "max-records", 0, "cap loaded records (0 = default, negative = no cap)")

	return cmd
}

// runLint loads the feed and prints its advisory report.
func (c *CLI) runLint(ctx context.Context, opts pipeline.Options, strict, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	if err := opts.ValidateForLoad(); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	f, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}

	report := feed.Lint(f)
	prog.done(fmt.Sprintf("Linted %d records", f.Len()))

	if report.Clean() {
		printSuccess("No findings in %d records", f.Len())
		return nil
	}

	for _, d := range report.Dangling {
		printWarning("record %s replies to missing id %s", d.RecordID, d.Parent)
	}
	for _, id := range report.Duplicates {
		printWarning("duplicate id %s (last occurrence wins)", id)
	}
	for _, id := range report.SelfLoops {
		printWarning("record %s is its own parent", id)
	}
	for _, cycle := range report.Cycles {
		printWarning("reply cycle: %s", strings.Join(cycle, " -> "))
	}
	printDetail("%d findings in %d records", report.Total(), f.Len())

	if strict {
		return fmt.Errorf("lint: %d findings", report.Total())
	}
	return nil
}
