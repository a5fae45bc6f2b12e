package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "isomorph").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "isomorph",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	loaderDuration     *prometheus.HistogramVec
	loaderFailures     *prometheus.CounterVec
	renderDuration     prometheus.Histogram
	renderFailures     *prometheus.CounterVec
	documentBytes      prometheus.Histogram
	hydrationMismatch  prometheus.Counter
	bootstrapFallbacks prometheus.Counter
}

// globalMetrics is created on the first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}
	}
	hopts := func(name, help string, buckets []float64) prometheus.HistogramOpts {
		o := opts(name, help)
		return prometheus.HistogramOpts{
			Namespace:   o.Namespace,
			Subsystem:   o.Subsystem,
			Name:        o.Name,
			Help:        o.Help,
			ConstLabels: o.ConstLabels,
			Buckets:     buckets,
		}
	}

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts(
			opts("http_requests_total", "Total HTTP requests by route, method and status")),
			[]string{"route", "method", "status"}),

		requestDuration: factory.NewHistogramVec(
			hopts("http_request_duration_seconds", "HTTP request duration in seconds", config.Buckets),
			[]string{"route"}),

		loaderDuration: factory.NewHistogramVec(
			hopts("loader_duration_seconds", "Route data loader duration in seconds", config.Buckets),
			[]string{"route_key"}),

		loaderFailures: factory.NewCounterVec(prometheus.CounterOpts(
			opts("loader_failures_total", "Route data loader failures by reason")),
			[]string{"route_key", "reason"}),

		renderDuration: factory.NewHistogram(
			hopts("render_duration_seconds", "Composition and serialization time per document", config.Buckets)),

		renderFailures: factory.NewCounterVec(prometheus.CounterOpts(
			opts("render_failures_total", "Documents that could not be produced, by phase")),
			[]string{"phase"}),

		documentBytes: factory.NewHistogram(
			hopts("document_bytes", "Size of rendered documents in bytes",
				[]float64{1024, 4096, 16384, 65536, 262144, 1048576})),

		hydrationMismatch: factory.NewCounter(prometheus.CounterOpts(
			opts("hydration_mismatches_total", "Nodes that differed between server markup and client render"))),

		bootstrapFallbacks: factory.NewCounter(prometheus.CounterOpts(
			opts("bootstrap_fallbacks_total", "Client bootstraps that fell back to the default state"))),
	}
}

func ensureMetrics(config MetricsConfig) *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	return globalMetrics
}

func currentMetrics() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}

// Prometheus creates middleware that collects HTTP metrics.
//
// Metrics collected:
//   - isomorph_http_requests_total: Counter by route pattern, method and status
//   - isomorph_http_request_duration_seconds: Histogram by route pattern
//   - isomorph_loader_duration_seconds / isomorph_loader_failures_total (RecordLoader)
//   - isomorph_render_duration_seconds / isomorph_render_failures_total (RecordRender)
//   - isomorph_document_bytes (RecordRender)
//   - isomorph_hydration_mismatches_total (RecordHydrationMismatches)
//   - isomorph_bootstrap_fallbacks_total (RecordBootstrapFallback)
//
// The route label is the chi route pattern when available, so parameterised
// paths do not explode label cardinality.
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	m := ensureMetrics(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routeLabel(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		})
	}
}

// routeLabel returns the matched chi pattern, falling back to the raw path.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	if r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}

// categorizeError returns a low-cardinality label for an error.
func categorizeError(err error) string {
	if err == nil {
		return "none"
	}
	var cat interface{ CategoryName() string }
	if errors.As(err, &cat) {
		return cat.CategoryName()
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline"), strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "canceled"):
		return "canceled"
	case strings.Contains(msg, "panic"):
		return "panic"
	case strings.Contains(msg, "not found"):
		return "not_found"
	default:
		return "internal"
	}
}

// =============================================================================
// Phase recording functions
// =============================================================================

// RecordLoader records one data loader invocation.
func RecordLoader(routeKey string, d time.Duration, err error) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.loaderDuration.WithLabelValues(routeKey).Observe(d.Seconds())
	if err != nil {
		m.loaderFailures.WithLabelValues(routeKey, categorizeError(err)).Inc()
	}
}

// RecordRender records composition plus serialization of one document.
// phase names the failing step when err is non-nil.
func RecordRender(d time.Duration, size int, phase string, err error) {
	m := currentMetrics()
	if m == nil {
		return
	}
	if err != nil {
		m.renderFailures.WithLabelValues(phase).Inc()
		return
	}
	m.renderDuration.Observe(d.Seconds())
	m.documentBytes.Observe(float64(size))
}

// RecordHydrationMismatches records divergent nodes found while hydrating.
func RecordHydrationMismatches(n int) {
	m := currentMetrics()
	if m == nil || n <= 0 {
		return
	}
	m.hydrationMismatch.Add(float64(n))
}

// RecordBootstrapFallback records a client bootstrap that used the default state.
func RecordBootstrapFallback() {
	if m := currentMetrics(); m != nil {
		m.bootstrapFallbacks.Inc()
	}
}
