package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depviz/pkg/observability"
	"github.com/matzehuels/depviz/pkg/server"
)

// serveCommand creates the "serve" command, which exposes the analysis over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		allowLocal bool
		noCache    bool
		noMetrics  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency analyses over HTTP",
		Long: `Serve starts an HTTP API:

  GET /v1/graph?package=&repo=&mode=&depth=   dependency edges as JSON
  GET /v1/order?package=&repo=&mode=&depth=   load order and cycle flag
  GET /v1/dot?package=&repo=&mode=&depth=     Graphviz DOT source
  GET /healthz                                liveness
  GET /metrics                                Prometheus metrics

Parsed indexes are memoized per repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc := c.Config.Serve
			if cmd.Flags().Changed("addr") {
				sc.Addr = addr
			}
			if cmd.Flags().Changed("allow-local") {
				sc.AllowLocal = allowLocal
			}
			if noMetrics {
				sc.Metrics = false
			}

			runner, store, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := server.Config{
				Addr:       sc.Addr,
				MemoSize:   sc.MemoSize,
				MemoTTL:    sc.MemoTTL,
				MaxDepth:   sc.MaxDepth,
				AllowLocal: sc.AllowLocal,
			}
			if sc.Metrics {
				cfg.Metrics = newMetrics()
				defer observability.Reset()
			}

			if sc.AllowLocal {
				c.Logger.Warn("test mode enabled; clients can read index files on this host")
			}
			return server.New(runner, cfg, c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&allowLocal, "allow-local", false, "accept mode=test requests (reads local files)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of downloaded indexes")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

// newMetrics creates a registry with process and Go collectors and installs
// the metrics as the global pipeline, cache and HTTP hooks.
func newMetrics() *observability.Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := observability.NewMetrics(reg)
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
	return m
}
