package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/isomorph"
	"github.com/vango-dev/isomorph/app"
	"github.com/vango-dev/isomorph/internal/config"
	"github.com/vango-dev/isomorph/internal/dev"
	"github.com/vango-dev/isomorph/pkg/api"
	"github.com/vango-dev/isomorph/pkg/assets"
)

// overrides are command-line values applied on top of the config file.
type overrides struct {
	port     int
	host     string
	upstream string
}

// loadConfig reads isomorph.yaml (explicit path or the working directory),
// the adjacent .env, environment variables and then flags.
func loadConfig(flags *globalFlags, o overrides) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.LoadOrDefault(".")
	}
	if err != nil {
		return nil, err
	}

	dir := cfg.Dir()
	if dir == "" {
		dir = "."
	}
	if err := config.LoadEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if o.port > 0 {
		cfg.Server.Port = o.port
	}
	if o.host != "" {
		cfg.Server.Host = o.host
	}
	if o.upstream != "" {
		cfg.Upstream = o.upstream
	}
	if flags.logLevel != "" {
		cfg.Log.Level = strings.ToLower(flags.logLevel)
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the default.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// buildApp wires the demo application from cfg. A non-nil reload hub is
// mounted in dev mode; the caller feeds it from a watcher.
func buildApp(ctx context.Context, cfg *config.Config, devMode bool, reload *dev.ReloadServer, logger *slog.Logger) (*isomorph.App, error) {
	timeout, _ := cfg.PrefetchTimeout()
	ttl, _ := cfg.CacheTTL()

	ic := isomorph.Config{
		Routes:          app.Routes(),
		Reducer:         app.Reducer,
		InitialState:    app.DefaultState,
		Upstream:        cfg.Upstream,
		CacheTTL:        ttl,
		PrefetchTimeout: timeout,
		Document: isomorph.DocumentConfig{
			Title:        cfg.Document.Title,
			ClientScript: cfg.Document.ClientScript,
			StateVar:     cfg.Document.StateVar,
			MountID:      cfg.Document.MountID,
			StyleSheets:  cfg.Document.StyleSheets,
		},
		Static: isomorph.StaticConfig{
			Dir:    cfg.StaticPath(),
			Prefix: cfg.Static.Prefix,
		},
		DevMode: devMode,
		Reload:  reload,
		Logger:  logger,
	}
	if !devMode {
		ic.Static.CacheControl = isomorph.CacheControlProduction
	}

	if file := cfg.ManifestPath(); file != "" {
		m, err := assets.Load(file)
		if err != nil {
			logger.Warn("asset manifest not loaded", "file", file, "error", err)
		} else {
			ic.Document.Manifest = m
		}
	}

	if cfg.Cache.RedisURL != "" {
		cache, err := api.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.Warn("upstream cache disabled", "error", err)
		} else {
			ic.Cache = cache
		}
	}

	if cfg.Static.S3Bucket != "" {
		client := isomorph.NewS3Client(cfg.Static.S3Region, cfg.Static.S3Endpoint)
		ic.Static.Assets = isomorph.NewS3Assets(client, cfg.Static.S3Bucket, cfg.Static.S3Prefix)
	} else if _, err := os.Stat(ic.Static.Dir); err != nil {
		ic.Static.Dir = ""
	}

	return isomorph.New(ic)
}
