// Package cli implements the threadline command-line interface.
//
// The package wires the threading pipeline into cobra commands: sort for
// threaded listings, render for artifact files, lint for structural
// findings, add for appending records, browse for an interactive view,
// and serve for the HTTP API. Commands share a charm logger carried on
// the CLI struct and an optional TOML config file
// (~/.config/threadline/config.toml) whose values act as flag defaults.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/threadline/pkg/buildinfo"
	"github.com/matzehuels/threadline/pkg/cache"
	"github.com/matzehuels/threadline/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "threadline"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Execute runs the threadline CLI with the given context and returns an
// error if any command fails.
//
// The --verbose flag raises the log level to debug. The logger is also
// attached to the command context for code that only sees a
// context.Context.
func Execute(ctx context.Context) error {
	c := New(os.Stderr, log.InfoLevel)
	root := c.RootCommand()

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	configPreRun := root.PersistentPreRun
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			c.SetLogLevel(log.DebugLevel)
		}
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		configPreRun(cmd, args)
	}

	return root.ExecuteContext(ctx)
}

// RootCommand creates the root cobra command with all subcommands
// registered. The config file is loaded just before any command runs so
// its values can serve as flag defaults.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Threadline turns flat reply feeds into threaded conversations",
		Long:         `Threadline loads flat records with reply-to references from files, URLs, or databases and sorts them into hierarchical display order, the way a comment section or mail reader presents a discussion.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig()
			if err != nil {
				c.Logger.Warn("ignoring config file", "err", err)
			}
			c.Config = cfg
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.sortCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.lintCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(ctx, c.Config.Cache, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns)
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache selects the cache backend. The zero config means a file cache
// under the user cache directory; backend "redis" connects to the
// configured URL (or THREADLINE_REDIS_URL) and "off" disables caching.
func newCache(ctx context.Context, cfg CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == "off" {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == "redis" {
		url := cfg.RedisURL
		if url == "" {
			url = os.Getenv("THREADLINE_REDIS_URL")
		}
		return cache.NewRedisCache(ctx, url)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// applyConfig fills unset flag-backed options from the config file.
// Flags the user set explicitly always win.
func applyConfig(cmd *cobra.Command, opts *pipeline.Options, cfg Config) {
	if !cmd.Flags().Changed("order") && cfg.Order != "" {
		opts.Order = cfg.Order
	}
	if !cmd.Flags().Changed("style") && cfg.Style != "" {
		opts.Style = cfg.Style
	}
	if !cmd.Flags().Changed("collection") && cfg.Source.Collection != "" {
		opts.Collection = cfg.Source.Collection
	}
	if !cmd.Flags().Changed("max-records") && cfg.Source.MaxRecords != 0 {
		opts.MaxRecords = cfg.Source.MaxRecords
	}
}
