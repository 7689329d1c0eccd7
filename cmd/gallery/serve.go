package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jfoltran/gallery/internal/lister"
	"github.com/jfoltran/gallery/internal/metrics"
	"github.com/jfoltran/gallery/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gallery web server",
	Long: `Serve starts the HTTP server. It lists the assets directory at
/api/images, serves the directory itself as static files and serves the
gallery page at /. Unless --no-watch is given, changes to the directory
are pushed to websocket clients at /api/ws.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		collector := metrics.NewCollector(cfg.Assets.Dir, logger)
		// Tee every log line into the collector for /api/logs.
		logger = newLogger(metrics.NewLogWriter(collector, logOutput))

		prom, err := metrics.NewPrometheusObserver("gallery", prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}

		l := lister.New(cfg.Assets.Dir, logger)
		opts := []server.Option{server.WithObserver(prom)}

		g, ctx := errgroup.WithContext(cmd.Context())
		if cfg.Assets.Watch {
			w := lister.NewWatcher(l, logger)
			opts = append(opts, server.WithWatcher(w))
			g.Go(func() error {
				// A missing directory still serves listing failures, so the
				// watcher stopping is not fatal.
				if err := w.Run(ctx); err != nil {
					logger.Warn().Err(err).Msg("assets watcher stopped")
				}
				return nil
			})
		}

		srv := server.New(l, collector, logger, opts...)
		g.Go(func() error { return srv.Start(ctx, cfg.Server.Addr()) })

		return g.Wait()
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("listen", "127.0.0.1", "Address to listen on")
	f.Int("port", 7654, "HTTP server port")
	f.String("assets", "public", "Directory of images to serve")
	f.Bool("no-watch", false, "Do not watch the assets directory for changes")
	rootCmd.AddCommand(serveCmd)
}
