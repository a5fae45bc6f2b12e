package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/isomorph/pkg/api"
	"github.com/vango-dev/isomorph/pkg/render"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/store"
	"github.com/vango-dev/isomorph/pkg/vdom"
	"github.com/vango-dev/isomorph/pkg/view"
)

// PropsBuilder builds router.Props for a single component call.
type PropsBuilder struct {
	route    *router.RouteNode
	params   map[string]string
	location string
	reducer  store.Reducer
	state    store.State
	client   api.Client
	outlet   *vdom.VNode
	styles   *view.StyleSheet
	store    *store.Store
}

// NewProps starts a builder with an empty store at location "/".
func NewProps() *PropsBuilder {
	return &PropsBuilder{
		params:   make(map[string]string),
		location: "/",
		styles:   view.NewStyleSheet(),
	}
}

// WithRoute sets the route the component is rendered for.
func (b *PropsBuilder) WithRoute(n *router.RouteNode) *PropsBuilder {
	b.route = n
	return b
}

// WithParam sets a route parameter.
func (b *PropsBuilder) WithParam(key, value string) *PropsBuilder {
	b.params[key] = value
	return b
}

// WithLocation sets the request path.
func (b *PropsBuilder) WithLocation(path string) *PropsBuilder {
	b.location = path
	return b
}

// WithState seeds the store.
func (b *PropsBuilder) WithState(s store.State) *PropsBuilder {
	b.state = s
	return b
}

// WithReducer sets the store reducer.
func (b *PropsBuilder) WithReducer(r store.Reducer) *PropsBuilder {
	b.reducer = r
	return b
}

// WithClient sets the client effects run against.
func (b *PropsBuilder) WithClient(c api.Client) *PropsBuilder {
	b.client = c
	return b
}

// WithOutlet makes Props.Outlet return node.
func (b *PropsBuilder) WithOutlet(node *vdom.VNode) *PropsBuilder {
	b.outlet = node
	return b
}

// Build returns the props. Calling Build again reuses the same store.
func (b *PropsBuilder) Build() router.Props {
	if b.store == nil {
		b.store = store.New(b.reducer, b.state, b.client)
	}
	p := router.Props{
		Route:    b.route,
		Params:   b.params,
		Location: b.location,
		Store:    b.store,
		Styles:   b.styles,
	}
	if b.outlet != nil {
		outlet := b.outlet
		p.Next = func() *vdom.VNode { return outlet }
	}
	return p
}

// Store returns the store behind the built props, or nil before Build.
func (b *PropsBuilder) Store() *store.Store {
	return b.store
}

// Styles returns the style fragments added so far.
func (b *PropsBuilder) Styles() []string {
	return b.styles.Fragments()
}

// RenderToString renders node without hydration ids. Render errors yield "".
func RenderToString(node *vdom.VNode) string {
	return renderWith(node, true)
}

// RenderWithIDs assigns hydration ids and renders node the way the server
// does, including data-hid and data-on-* markers.
func RenderWithIDs(node *vdom.VNode) string {
	vdom.AssignHIDs(node, vdom.NewHIDGenerator())
	return renderWith(node, false)
}

func renderWith(node *vdom.VNode, omitHIDs bool) string {
	html, err := render.NewRenderer(render.RendererConfig{OmitHIDs: omitHIDs}).RenderToString(node)
	if err != nil {
		return ""
	}
	return html
}

// ExpectContains asserts that the rendered output contains expected.
func ExpectContains(t testing.TB, node *vdom.VNode, expected string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered output does not contain
// unexpected.
func ExpectNotContains(t testing.TB, node *vdom.VNode, unexpected string) {
	t.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that the rendered output contains a tag.
func ExpectElement(t testing.TB, node *vdom.VNode, tag string) {
	t.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that the rendered output carries attr="value".
func ExpectAttribute(t testing.TB, node *vdom.VNode, attr, value string) {
	t.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
