package cli

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/pipeline"
)

// renderCommand creates the render command for writing artifact files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		noCache    bool
		formatsStr string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [source]",
		Short: "Render a feed to artifact files",
		Long: `Render a feed to artifact files.

Formats: text, json, dot (Graphviz), svg, png. Multiple formats may be
given as a comma-separated list; each is written next to the source (or
under --output as a base path) with a matching extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			applyConfig(cmd, &opts, c.Config)
			if !cmd.Flags().Changed("format") && c.Config.Format != "" {
				formatsStr = c.Config.Format
			}
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): text (default), json, dot, svg, png (comma-separated)")
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

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering feed...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := basePath(output, opts.Source)
	printSuccess("Rendered %d records", result.Stats.RecordCount)
	for _, format := range opts.Formats {
		outPath := base + "." + extFor(format)
		if err := os.WriteFile(outPath, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		printFile(outPath)
	}
	printStats(result.Stats.RecordCount, len(result.Entries), result.CacheInfo.RenderHit)

	return nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	return strings.Split(s, ",")
}

// basePath derives the base output path. An explicit output wins, with a
// known format extension stripped. Otherwise the source name is used:
// file paths keep their directory and drop the extension, URLs and DSNs
// reduce to their last path element.
func basePath(output, source string) string {
	if output != "" {
		ext := filepath.Ext(output)
		trimmed := strings.TrimPrefix(ext, ".")
		if pipeline.ValidFormats[trimmed] || trimmed == "txt" {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}

	base := source
	if strings.Contains(source, "://") {
		base = path.Base(strings.SplitN(source, "?", 2)[0])
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		return "thread"
	}
	return base
}

// extFor maps a format to its file extension.
func extFor(format string) string {
	if format == feed.FormatText {
		return "txt"
	}
	return format
}
