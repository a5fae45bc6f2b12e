package isomorph

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/isomorph/internal/dev"
	"github.com/vango-dev/isomorph/pkg/api"
	"github.com/vango-dev/isomorph/pkg/assets"
	"github.com/vango-dev/isomorph/pkg/render"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/store"
)

// DefaultUpstream is the data API of the demo application.
const DefaultUpstream = "https://jsonplaceholder.typicode.com"

// Config is the application configuration.
type Config struct {
	// Routes is the route table. It is validated by New.
	Routes []*router.RouteNode

	// Reducer and InitialState build the store of every request.
	// InitialState must return a fresh value on each call.
	Reducer      store.Reducer
	InitialState func() store.State

	// Upstream is the base URL of the data API. Loaders call it directly
	// and browsers reach it through APIPrefix. Empty disables the proxy.
	Upstream string

	// APIPrefix is where the upstream proxy is mounted. Default: "/api".
	APIPrefix string

	// Client replaces the HTTP client built from Upstream.
	Client api.Client

	// Cache, when set, caches upstream responses for CacheTTL.
	Cache    api.Cache
	CacheTTL time.Duration

	// PrefetchTimeout bounds the loader phase of a request. Zero means no
	// bound beyond the request context.
	PrefetchTimeout time.Duration

	// Document configures the HTML shell.
	Document DocumentConfig

	// Static configures static file serving.
	Static StaticConfig

	// DevMode shows error details on error pages and, with Reload set,
	// enables live reload.
	DevMode bool

	// Reload is the live reload hub mounted at dev.ReloadPath in DevMode.
	Reload *dev.ReloadServer

	// Registry receives the metrics and backs /metrics. If nil the default
	// Prometheus registry is used.
	Registry *prometheus.Registry

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DocumentConfig configures the served HTML shell.
type DocumentConfig struct {
	Title        string
	ClientScript string
	StateVar     string
	MountID      string
	StyleSheets  []string

	// Manifest rewrites ClientScript and StyleSheets to fingerprinted
	// names. Optional.
	Manifest *assets.Manifest
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Dir is the directory containing static files (e.g., "public").
	Dir string

	// Assets replaces Dir, e.g. with an S3Assets bucket.
	Assets AssetSource

	// Prefix is the URL prefix for static files. Default: "/".
	Prefix string

	// CacheControl determines caching behavior for static files.
	CacheControl CacheControlStrategy

	// Headers are added to every static response.
	Headers map[string]string
}

// CacheControlStrategy determines caching behavior for static files.
type CacheControlStrategy int

const (
	// CacheControlNone sends no-store so edits show up immediately.
	CacheControlNone CacheControlStrategy = iota

	// CacheControlProduction caches fingerprinted files (app.3f9a2c1d.css)
	// for a year and everything else for an hour.
	CacheControlProduction
)

// DefaultConfig returns a Config with defaults filled in.
func DefaultConfig() Config {
	return Config{
		Upstream:  DefaultUpstream,
		APIPrefix: "/api",
		Document: DocumentConfig{
			ClientScript: render.DefaultClientScript,
			StateVar:     render.DefaultStateVar,
			MountID:      render.DefaultMountID,
		},
		Static: StaticConfig{
			Dir:    "public",
			Prefix: "/",
		},
	}
}

func (c *Config) applyDefaults() {
	if c.APIPrefix == "" {
		c.APIPrefix = "/api"
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
