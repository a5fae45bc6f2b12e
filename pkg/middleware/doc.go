// Package middleware provides the HTTP observability stack for isomorph
// servers: request logging, Prometheus metrics and OpenTelemetry tracing.
//
// Every middleware has the func(http.Handler) http.Handler shape, so it can
// be mounted on a chi router or wrapped around any handler:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestLogger(logger))
//	r.Use(middleware.Prometheus(middleware.WithNamespace("blog")))
//	r.Use(middleware.OpenTelemetry())
//
// The Record* functions feed the rendering phase metrics (loader latency,
// render time, hydration mismatches). They are no-ops until Prometheus has
// been called once.
package middleware
