package hydrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/vango-dev/isomorph/pkg/middleware"
	"github.com/vango-dev/isomorph/pkg/render"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/store"
	"github.com/vango-dev/isomorph/pkg/vdom"
	"github.com/vango-dev/isomorph/pkg/view"
)

// ErrNoRoute is returned when the page path matches no route on the client.
var ErrNoRoute = errors.New("hydrate: no route matches path")

// Root is a hydrated application bound to its mount element.
type Root struct {
	mu        sync.Mutex
	container *html.Node
	store     *store.Store
	path      string
	matches   []router.MatchEntry
	vnode     *vdom.VNode
	bindings  map[string]binding
	renders   int
	logger    *slog.Logger
	unsub     func()

	// Mismatches found while adopting the server markup.
	Mismatches []Mismatch

	// MountErrors are OnMount hook failures; they do not undo hydration.
	MountErrors []error
}

// Hydrate composes the client tree for path from s and adopts the existing
// children of container. After reconciliation the OnMount hooks of the
// matched routes run in order; any later state change re-renders the page.
func Hydrate(ctx context.Context, container *html.Node, tree *router.Tree, s *store.Store, path string) (*Root, error) {
	matches := tree.Match(path)
	if len(matches) == 0 {
		return nil, ErrNoRoute
	}

	r := &Root{
		container: container,
		store:     s,
		path:      path,
		matches:   matches,
		logger:    slog.Default().With("component", "hydrate", "path", path),
	}

	r.vnode = r.compose()
	rec := &reconciler{bindings: make(map[string]binding)}
	rec.children("", container, []*vdom.VNode{r.vnode})
	r.bindings = rec.bindings
	r.Mismatches = rec.mismatches

	if len(r.Mismatches) > 0 {
		for _, m := range r.Mismatches {
			r.logger.Warn("hydration mismatch", "code", "E040", "node", m.Path, "want", m.Want, "got", m.Got)
		}
		middleware.RecordHydrationMismatches(len(r.Mismatches))
	}

	r.unsub = s.Subscribe(func(store.State) {
		if err := r.Rerender(); err != nil {
			r.logger.Error("re-render failed", "error", err)
		}
	})

	for _, m := range matches {
		if m.Node.OnMount == nil {
			continue
		}
		if err := m.Node.OnMount(ctx, s, m.Params); err != nil {
			r.logger.Warn("mount hook failed", "route", m.Node.Name(), "error", err)
			r.MountErrors = append(r.MountErrors, fmt.Errorf("%s: %w", m.Node.Name(), err))
		}
	}

	return r, nil
}

func (r *Root) compose() *vdom.VNode {
	node := view.Compose(r.matches, r.path, r.store, nil)
	vdom.AssignHIDs(node, vdom.NewHIDGenerator())
	return node
}

// Rerender composes the tree from the current state and replaces the
// container's children with it.
func (r *Root) Rerender() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.compose()
	markup, err := render.NewRenderer(render.RendererConfig{}).RenderToString(node)
	if err != nil {
		return err
	}
	ctxNode := &html.Node{Type: html.ElementNode, Data: r.container.Data, DataAtom: r.container.DataAtom}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctxNode)
	if err != nil {
		return fmt.Errorf("hydrate: parse rendered markup: %w", err)
	}

	for c := r.container.FirstChild; c != nil; {
		next := c.NextSibling
		r.container.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		r.container.AppendChild(n)
	}

	rec := &reconciler{bindings: make(map[string]binding)}
	rec.children("", r.container, []*vdom.VNode{node})
	r.vnode = node
	r.bindings = rec.bindings
	r.renders++
	return nil
}

// Trigger invokes the handler bound to hid for event ("click", "input").
// arg is passed to handlers that accept a value.
func (r *Root) Trigger(hid, event string, arg any) error {
	r.mu.Lock()
	b, ok := r.bindings[hid]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("hydrate: no element bound to %s", hid)
	}

	switch h := b.vnode.Props["on"+event].(type) {
	case func():
		h()
	case func(string):
		s, _ := arg.(string)
		h(s)
	case func(any):
		h(arg)
	default:
		return fmt.Errorf("hydrate: %s has no %s handler", hid, event)
	}
	return nil
}

// Bound returns the DOM node adopted for hid.
func (r *Root) Bound(hid string) (*html.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[hid]
	return b.node, ok
}

// Store returns the client store.
func (r *Root) Store() *store.Store {
	return r.store
}

// Tree returns the current client tree.
func (r *Root) Tree() *vdom.VNode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vnode
}

// Renders counts full client re-renders since hydration.
func (r *Root) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}

// HTML returns the container's current markup.
func (r *Root) HTML() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return InnerHTML(r.container)
}

// Close stops re-rendering on state changes.
func (r *Root) Close() {
	if r.unsub != nil {
		r.unsub()
	}
}

// Resume runs the whole client start-up against a served document:
// extract state, bootstrap the store, locate the mount point and hydrate.
func Resume(ctx context.Context, document string, tree *router.Tree, path string, opts Options) (*Root, error) {
	raw, err := ExtractState(document, "")
	if err != nil && !errors.Is(err, ErrNoState) {
		return nil, err
	}
	s, _ := Bootstrap(raw, opts)

	mount, err := MountPoint(document, "")
	if err != nil {
		return nil, err
	}
	return Hydrate(ctx, mount, tree, s, path)
}
