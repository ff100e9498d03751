package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/server"
)

// serveOpts holds options for the serve command.
type serveOpts struct {
	addr    string
	noCache bool
	watch   bool
	metrics bool
	cors    []string
	layout  layoutFlags
}

// serveCommand creates the serve command that exposes a chart over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve <family.json|url|store:id>",
		Short: "Serve a family chart over HTTP",
		Long: `Serve a family chart over HTTP.

Endpoints:
  GET /health                         liveness and snapshot status
  GET /api/family                     the family snapshot
  GET /api/layout                     card positions and connectors
  GET /api/people/{id}                one person with parents, spouse, children
                                      (?symmetric=true finds reverse spouses)
  GET /api/chart.{svg,png,dot,json}   rendered chart (?title=, ?detailed=true)
  GET /metrics                        Prometheus metrics (with --metrics)

The snapshot is loaded once in the background; data endpoints answer 503 until
it is ready. With --watch, a file input is reloaded whenever it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("addr") {
				opts.addr = c.Config.Server.Addr
			}
			if !flags.Changed("watch") {
				opts.watch = c.Config.Server.Watch
			}
			if !flags.Changed("metrics") {
				opts.metrics = c.Config.Server.Metrics
			}
			if !flags.Changed("cors") {
				opts.cors = c.Config.Server.CORSOrigins
			}
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload a file input when it changes")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "expose Prometheus metrics at /metrics")
	cmd.Flags().StringSliceVar(&opts.cors, "cors", nil, "allowed CORS origins (repeatable, * for any)")
	opts.layout.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts serveOpts) error {
	if opts.watch && pipeline.ClassifyInput(input) != pipeline.InputFile {
		return errors.New(errors.ErrCodeUnsupported, "--watch needs a local file input, got %s", input)
	}

	runner, err := c.newRunner(ctx, input, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var serverOpts []server.Option
	if len(opts.cors) > 0 {
		serverOpts = append(serverOpts, server.WithCORS(opts.cors...))
	}
	if opts.metrics {
		m := observability.NewMetrics(appName)
		c.addHooks(m)
		serverOpts = append(serverOpts, server.WithMetrics(m))
	}

	srv, err := server.New(runner, c.pipelineOptions(input, opts.layout), c.Logger, serverOpts...)
	if err != nil {
		return err
	}

	if opts.watch {
		go func() {
			if err := srv.Watch(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
				c.Logger.Warn("file watch stopped", "err", err)
			}
		}()
	}

	printInfo("Serving %s on %s", input, StyleLink.Render(displayURL(opts.addr)))
	if opts.metrics {
		printDetail("Metrics at %s/metrics", displayURL(opts.addr))
	}
	err = srv.ListenAndServe(ctx, opts.addr)
	if err == context.Canceled {
		printNewline()
		printSuccess("Server stopped")
	}
	return err
}

// displayURL turns a listen address into a clickable URL.
func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
