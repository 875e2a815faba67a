package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/internal/server"
	"github.com/matzehuels/mindtree/pkg/observability/metrics"
	"github.com/matzehuels/mindtree/pkg/pipeline"
	"github.com/matzehuels/mindtree/pkg/storage"
)

// serveCommand creates the serve command, which exposes stored maps over
// HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		backend   string
		dir       string
		noMetrics bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored mind maps over HTTP",
		Long: `Serve stored mind maps over HTTP.

Maps are read from and written to the configured store (file, memory, redis
or mongo). Each map is loaded into an editor on first use; every edit is
written back immediately. Prometheus metrics are served on /metrics.`,
		Example: `  mindtree serve --addr :9000
  mindtree serve --storage memory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.settings()

			storeOpts := cfg.StorageOptions()
			if cmd.Flags().Changed("storage") {
				storeOpts.Backend = backend
			}
			if cmd.Flags().Changed("dir") {
				storeOpts.Dir = dir
			}
			store, err := storage.Open(ctx, storeOpts, c.Logger)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()

			edOpts, err := c.editorOptions()
			if err != nil {
				return err
			}

			cc, err := c.newCache(ctx, noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			runner := pipeline.NewRunner(cc, nil, c.Logger)
			defer runner.Close()

			opts := server.Options{
				Addr:     cfg.Server.Addr,
				Editor:   edOpts,
				OpenMaps: cfg.Server.OpenMaps,
				IdleTTL:  cfg.Server.IdleTTL,
				Logger:   c.Logger,
			}
			if cmd.Flags().Changed("addr") {
				opts.Addr = addr
			}
			if !noMetrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				metrics.New(reg).Install()
				opts.Metrics = metrics.Handler(reg)
			}

			srv := server.New(store, runner, opts)
			printInfo("Serving %s maps on %s", backendOr(storeOpts.Backend, storage.BackendFile), opts.Addr)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&backend, "storage", storage.BackendFile, "storage backend: file, memory, redis, mongo")
	cmd.Flags().StringVar(&dir, "dir", "", "map directory for the file backend (default: $XDG_DATA_HOME/mindtree/maps)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable artifact caching")

	return cmd
}
