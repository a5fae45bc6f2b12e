package ssr

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/isomorph/pkg/api"
	"github.com/vango-dev/isomorph/pkg/middleware"
	"github.com/vango-dev/isomorph/pkg/prefetch"
	"github.com/vango-dev/isomorph/pkg/render"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/store"
)

// Options configures a Pipeline.
type Options struct {
	Tree *router.Tree

	// Reducer and InitialState build the per-request store. InitialState
	// must return a fresh value on every call.
	Reducer      store.Reducer
	InitialState func() store.State

	// Client is the server-side data-access client given to every store.
	Client api.Client

	// Prefetch runs the loaders. Default: a coordinator without timeout.
	Prefetch *prefetch.Coordinator

	// Document fields copied into every page.
	Title        string
	ClientScript string
	StateVar     string
	MountID      string
	StyleSheets  []string
	DevScript    string

	Logger *slog.Logger
}

// Pipeline is the full server render flow. Safe for concurrent use.
type Pipeline struct {
	opts      Options
	assembler *Assembler
	prefetch  *prefetch.Coordinator
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts Options) *Pipeline {
	if opts.InitialState == nil {
		opts.InitialState = func() store.State { return store.State{} }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "ssr")
	}
	pf := opts.Prefetch
	if pf == nil {
		pf = prefetch.NewCoordinator(prefetch.Config{Logger: opts.Logger})
	}
	return &Pipeline{
		opts:      opts,
		assembler: NewAssembler(opts.Tree),
		prefetch:  pf,
		logger:    opts.Logger,
	}
}

// Page is a rendered document.
type Page struct {
	HTML    string
	Result  *Result
	Report  *prefetch.Report
	Matches []router.MatchEntry
}

// Render produces the document for path. Errors:
//   - ErrNotFound when nothing matches; no loader or component runs
//   - *prefetch.Error when a loader fails
//   - *store.SerializationError when the state cannot be embedded
//
// No partial document is ever returned with an error.
func (p *Pipeline) Render(ctx context.Context, path string) (*Page, error) {
	matches := p.opts.Tree.Match(path)
	if len(matches) == 0 {
		return nil, ErrNotFound
	}

	s := store.New(p.opts.Reducer, p.opts.InitialState(), p.opts.Client)

	report, err := p.prefetch.Run(ctx, matches, s)
	if err != nil {
		middleware.RecordRender(0, 0, "prefetch", err)
		return nil, err
	}

	_, span := middleware.StartSpan(ctx, "render "+path,
		attribute.String("isomorph.path", path),
		attribute.Int("isomorph.matches", len(matches)),
	)
	start := time.Now()

	res, err := p.assembler.RenderMatches(s, path, matches)
	if err != nil {
		middleware.EndSpan(span, err)
		middleware.RecordRender(0, 0, "compose", err)
		return nil, err
	}

	html, err := render.SerializeDocument(render.Document{
		Title:        p.opts.Title,
		Markup:       res.Markup,
		Styles:       res.Styles,
		State:        res.State,
		MountID:      p.opts.MountID,
		StateVar:     p.opts.StateVar,
		ClientScript: p.opts.ClientScript,
		StyleSheets:  p.opts.StyleSheets,
		DevScript:    p.opts.DevScript,
	})
	middleware.EndSpan(span, err)
	if err != nil {
		middleware.RecordRender(0, 0, "serialize", err)
		return nil, err
	}

	middleware.RecordRender(time.Since(start), len(html), "", nil)
	p.logger.Debug("rendered",
		"path", path,
		"loaders", report.Awaited,
		"styles", len(res.Styles),
		"bytes", len(html))

	return &Page{HTML: html, Result: res, Report: report, Matches: matches}, nil
}
