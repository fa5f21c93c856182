package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/threadline/pkg/pipeline"
)

// browseCommand creates the browse command for the interactive viewer.
func (c *CLI) browseCommand() *cobra.Command {
	var noCache bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "browse [source]",
		Short: "Browse a threaded feed interactively",
		Long: `Browse a threaded feed interactively.

Keys: j/k or the arrows move, space or enter folds and unfolds a
record's replies, g/G jump to the ends, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			applyConfig(cmd, &opts, c.Config)
			return c.runBrowse(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.Order, "order", "", "sibling order: oldest (default), newest, top")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached data and fetch fresh")
	cmd.Flags().StringVar(&opts.Collection, "collection", "", "table or collection for database sources")
	cmd.Flags().IntVar(&opts.MaxRecords, "max-records", 0, "cap loaded records (0 = default, negative = no cap)")

	return cmd
}

// runBrowse loads and threads the feed, then hands it to the TUI.
func (c *CLI) runBrowse(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	if err := opts.ValidateForLoad(); err != nil {
		return err
	}
	if err := opts.ValidateForThread(); err != nil {
		return err
	}

	f, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	res, err := runner.Thread(ctx, f, opts)
	if err != nil {
		return err
	}

	model := NewThreadModel(f.Title, res.Entries)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
