package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/isomorph/internal/dev"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		o       overrides
		devMode bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Serve the demo application.

Every GET renders the matched routes after their loaders finish.
Requests under /api are proxied to the upstream, /metrics exposes
Prometheus metrics and /healthz answers liveness probes.

With --dev, error pages show the error code and detail, static files
are not cached, and open pages reload when files under dev.watch change.

Examples:
  isomorph serve
  isomorph serve --port=8080
  isomorph serve --dev --upstream=http://localhost:4000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags, o, devMode)
		},
	}

	cmd.Flags().IntVarP(&o.port, "port", "p", 0, "Port to listen on (default from isomorph.yaml)")
	cmd.Flags().StringVarP(&o.host, "host", "H", "", "Host to bind to (default from isomorph.yaml)")
	cmd.Flags().StringVar(&o.upstream, "upstream", "", "Data API base URL")
	cmd.Flags().BoolVar(&devMode, "dev", false, "Development mode with live reload")

	return cmd
}

func runServe(cmd *cobra.Command, flags *globalFlags, o overrides, devMode bool) error {
	cfg, err := loadConfig(flags, o)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reload *dev.ReloadServer
	if devMode {
		reload = dev.NewReloadServer(logger.With("component", "reload"))
	}

	a, err := buildApp(ctx, cfg, devMode, reload, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if reload != nil {
		watcher := dev.NewWatcher(dev.WatcherConfig{
			Paths:  cfg.WatchPaths(),
			Ignore: cfg.Dev.Ignore,
			Logger: logger.With("component", "watcher"),
		})
		go watcher.Run(ctx, reload.Forward)
	}

	w := cmd.OutOrStdout()
	printBanner(w)
	success(w, "Serving %d routes", a.Tree().Len())
	info(w, "Local:    http://%s", cfg.Address())
	info(w, "Upstream: %s", cfg.Upstream)
	if devMode {
		warn(w, "Development mode: error details are shown to clients")
	}

	if err := a.Serve(ctx, cfg.Address()); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
