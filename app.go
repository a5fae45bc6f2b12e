package isomorph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/isomorph/internal/dev"
	"github.com/vango-dev/isomorph/pkg/api"
	"github.com/vango-dev/isomorph/pkg/middleware"
	"github.com/vango-dev/isomorph/pkg/prefetch"
	"github.com/vango-dev/isomorph/pkg/render"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/routepath"
	"github.com/vango-dev/isomorph/pkg/ssr"
)

// App is the HTTP entry point. It wraps the render pipeline, static assets
// and the upstream proxy into a single http.Handler.
type App struct {
	mux      *chi.Mux
	pipeline *ssr.Pipeline
	tree     *router.Tree
	client   api.Client
	assets   AssetSource

	config Config
	logger *slog.Logger
}

// New validates the route table and builds the application.
func New(cfg Config) (*App, error) {
	cfg.applyDefaults()

	tree, err := router.NewTree(cfg.Routes)
	if err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		if cfg.Upstream == "" {
			return nil, errors.New("isomorph: Upstream or Client is required")
		}
		client = api.NewHTTPClient(cfg.Upstream,
			api.WithLogger(cfg.Logger.With("component", "api")))
	}
	if cfg.Cache != nil {
		client = api.NewCachedClient(client, cfg.Cache, cfg.CacheTTL)
	}

	devScript := ""
	if cfg.DevMode && cfg.Reload != nil {
		devScript = dev.DevClientScript
	}

	manifest := cfg.Document.Manifest
	clientScript := cfg.Document.ClientScript
	if clientScript == "" {
		clientScript = render.DefaultClientScript
	}

	a := &App{
		tree:   tree,
		client: client,
		assets: cfg.Static.Assets,
		config: cfg,
		logger: cfg.Logger,
	}
	if a.assets == nil && cfg.Static.Dir != "" {
		a.assets = NewDirAssets(cfg.Static.Dir)
	}

	a.pipeline = ssr.NewPipeline(ssr.Options{
		Tree:         tree,
		Reducer:      cfg.Reducer,
		InitialState: cfg.InitialState,
		Client:       client,
		Prefetch: prefetch.NewCoordinator(prefetch.Config{
			Timeout: cfg.PrefetchTimeout,
			Logger:  cfg.Logger.With("component", "prefetch"),
		}),
		Title:        cfg.Document.Title,
		ClientScript: manifest.Resolve(clientScript),
		StateVar:     cfg.Document.StateVar,
		MountID:      cfg.Document.MountID,
		StyleSheets:  manifest.ResolveAll(cfg.Document.StyleSheets),
		DevScript:    devScript,
		Logger:       cfg.Logger.With("component", "ssr"),
	})

	a.mux = a.routes()
	return a, nil
}

func (a *App) routes() *chi.Mux {
	r := chi.NewRouter()

	metricsOpts := []middleware.MetricsOption{}
	if a.config.Registry != nil {
		metricsOpts = append(metricsOpts, middleware.WithRegistry(a.config.Registry))
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(a.logger))
	r.Use(middleware.Prometheus(metricsOpts...))
	r.Use(middleware.OpenTelemetry(middleware.WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
	})))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok\n")
	})

	if a.config.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.config.Registry, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	if a.config.DevMode && a.config.Reload != nil {
		r.Handle(dev.ReloadPath, a.config.Reload)
	}

	if a.config.Upstream != "" {
		proxy, err := newAPIProxy(a.config.Upstream, a.config.APIPrefix, a.logger)
		if err != nil {
			a.logger.Error("api proxy disabled", "upstream", a.config.Upstream, "error", err)
		} else {
			r.Handle(a.config.APIPrefix, proxy)
			r.Handle(a.config.APIPrefix+"/*", proxy)
		}
	}

	r.Get("/*", a.serve)
	r.Head("/*", a.serve)
	return r
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Router returns the chi router so callers can mount extra handlers.
func (a *App) Router() chi.Router {
	return a.mux
}

// Pipeline returns the render pipeline.
func (a *App) Pipeline() *ssr.Pipeline {
	return a.pipeline
}

// Tree returns the compiled route table.
func (a *App) Tree() *router.Tree {
	return a.tree
}

// Client returns the server-side data-access client.
func (a *App) Client() api.Client {
	return a.client
}

// serve answers a GET or HEAD with a static file when one exists and a
// rendered page otherwise.
func (a *App) serve(w http.ResponseWriter, r *http.Request) {
	clean, err := routepath.Clean(r.URL.EscapedPath())
	if err != nil {
		http.Error(w, "bad request path", http.StatusBadRequest)
		return
	}
	if clean.Redirect {
		target := clean.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}

	if a.serveStatic(w, r) {
		return
	}

	page, err := a.pipeline.Render(r.Context(), r.URL.EscapedPath())
	if err != nil {
		a.serveError(w, r, err)
		return
	}

	// The document is complete before the first byte is written.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(page.HTML)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		io.WriteString(w, page.HTML)
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the reload hub and a closable cache.
func (a *App) Close() error {
	if a.config.Reload != nil {
		a.config.Reload.Close()
	}
	if c, ok := a.config.Cache.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
