package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/threadline/internal/api"
	"github.com/matzehuels/threadline/pkg/observability"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the threading HTTP API",
		Long: `Run the threading HTTP API.

Exposes POST /v1/thread, POST /v1/render, POST /v1/lint, and
GET /healthz. The cache backend comes from the config file; set
cache.backend = "redis" (or THREADLINE_REDIS_URL) to share entries
across instances. The server drains in-flight requests on SIGINT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

// runServe blocks serving the API until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer runner.Close()

	// Server mode gets per-stage event logging; one-shot commands stay
	// with the pipeline's summary lines.
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetSourceHooks(hooks)

	srv := api.NewServer(runner, c.Logger)
	return srv.ListenAndServe(ctx, addr)
}
