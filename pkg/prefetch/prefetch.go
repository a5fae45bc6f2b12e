// Package prefetch resolves the data dependencies of matched routes before
// anything is rendered.
//
// Every matched route with a LoadData function is invoked concurrently
// against the request's store. Run returns only after every loader has
// settled. A single failure fails the whole prefetch: partial data is never
// rendered.
package prefetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/isomorph/pkg/middleware"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/store"
)

// Config configures a Coordinator.
type Config struct {
	// Timeout bounds the whole prefetch. Zero means no deadline; loaders
	// then run until they return or the request context ends.
	Timeout time.Duration

	// Logger receives loader failures.
	// Default: slog.Default() with component=prefetch
	Logger *slog.Logger
}

// Coordinator runs route loaders. Safe for concurrent use.
type Coordinator struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "prefetch")
	}
	return &Coordinator{timeout: cfg.Timeout, logger: cfg.Logger}
}

// Report summarizes a successful prefetch.
type Report struct {
	// Awaited is the number of loaders invoked.
	Awaited int

	// Durations holds each loader's run time by route name.
	Durations map[string]time.Duration
}

// Failure is one loader that did not succeed.
type Failure struct {
	Route string
	Err   error
}

// Error is the aggregate prefetch failure.
type Error struct {
	Failures []Failure
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.Route, f.Err)
	}
	return fmt.Sprintf("prefetch: %d loader(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the loader errors to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}

// Routes returns the names of the failed routes in match order.
func (e *Error) Routes() []string {
	out := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Route
	}
	return out
}

// PanicError is a recovered loader panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("loader panic: %v", e.Value)
}

// ErrNotSettled is reported for loaders still running when the deadline or
// the request context ended.
var ErrNotSettled = errors.New("loader did not settle")

type result struct {
	index    int
	err      error
	duration time.Duration
}

// Run invokes the loaders of matches concurrently with s and waits for all
// of them.
func (c *Coordinator) Run(ctx context.Context, matches []router.MatchEntry, s *store.Store) (*Report, error) {
	report := &Report{Durations: make(map[string]time.Duration)}

	var pending []int
	for i, m := range matches {
		if m.Node != nil && m.Node.LoadData != nil {
			pending = append(pending, i)
		}
	}
	report.Awaited = len(pending)
	if len(pending) == 0 {
		return report, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	results := make(chan result, len(pending))
	for _, i := range pending {
		go c.runLoader(ctx, i, matches[i], s, results)
	}

	errs := collect(ctx, pending, results, func(r result) {
		report.Durations[matches[r.index].Node.Name()] = r.duration
	})

	if len(errs) == 0 {
		return report, nil
	}

	agg := &Error{}
	for _, i := range pending {
		if err, ok := errs[i]; ok {
			name := matches[i].Node.Name()
			agg.Failures = append(agg.Failures, Failure{Route: name, Err: err})
			c.logger.Warn("loader failed", "route", name, "url", matches[i].URL, "error", err)
		}
	}
	return nil, agg
}

// collect receives one result per pending loader. When ctx ends first, the
// results already delivered are still taken; only loaders that never
// reported are marked ErrNotSettled.
func collect(ctx context.Context, pending []int, results <-chan result, record func(result)) map[int]error {
	errs := make(map[int]error, len(pending))
	settled := make(map[int]bool, len(pending))
	take := func(r result) {
		settled[r.index] = true
		record(r)
		if r.err != nil {
			errs[r.index] = r.err
		}
	}

	for len(settled) < len(pending) {
		select {
		case r := <-results:
			take(r)
			continue
		case <-ctx.Done():
		}

	drain:
		for len(settled) < len(pending) {
			select {
			case r := <-results:
				take(r)
			default:
				break drain
			}
		}
		for _, i := range pending {
			if !settled[i] {
				errs[i] = fmt.Errorf("%w: %w", ErrNotSettled, ctx.Err())
			}
		}
		break
	}
	return errs
}

func (c *Coordinator) runLoader(ctx context.Context, i int, m router.MatchEntry, s *store.Store, out chan<- result) {
	name := m.Node.Name()
	ctx, span := middleware.StartSpan(ctx, "prefetch "+name,
		attribute.String("isomorph.route", name),
		attribute.String("isomorph.url", m.URL),
	)

	start := time.Now()
	var err error
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
		d := time.Since(start)
		middleware.EndSpan(span, err)
		middleware.RecordLoader(name, d, err)
		out <- result{index: i, err: err, duration: d}
	}()

	err = m.Node.LoadData(ctx, s, m.Params)
}
