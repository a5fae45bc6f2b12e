package router

import (
	"context"

	"github.com/vango-dev/isomorph/pkg/store"
	"github.com/vango-dev/isomorph/pkg/vdom"
)

// Component renders one route.
type Component func(p Props) *vdom.VNode

// LoadFunc resolves a route's data dependency into the store before render.
type LoadFunc func(ctx context.Context, s *store.Store, params map[string]string) error

// MountFunc runs on the client after hydration.
type MountFunc func(ctx context.Context, s *store.Store, params map[string]string) error

// RouteNode is one entry of the route table. It must not be modified after
// NewTree; the same tree is shared by all requests.
type RouteNode struct {
	Path      string
	Exact     bool
	Key       string
	Component Component
	LoadData  LoadFunc
	OnMount   MountFunc
	Routes    []*RouteNode
}

// Name returns the key, or the path when the key is empty.
func (n *RouteNode) Name() string {
	if n.Key != "" {
		return n.Key
	}
	return n.Path
}

// StyleSink receives style fragments during server composition.
type StyleSink interface {
	AddStyle(css string)
}

// Props is what a component receives.
type Props struct {
	Route    *RouteNode
	Params   map[string]string
	Location string
	Store    *store.Store
	Styles   StyleSink // nil on the client

	// Next renders the next matched route; nil at the leaf.
	Next func() *vdom.VNode
}

// Outlet renders the child route's component, or nil at the leaf.
func (p Props) Outlet() *vdom.VNode {
	if p.Next == nil {
		return nil
	}
	return p.Next()
}

// AddStyle records a style fragment when a sink is present.
func (p Props) AddStyle(css string) {
	if p.Styles != nil {
		p.Styles.AddStyle(css)
	}
}

// State returns the current store state, or nil without a store.
func (p Props) State() store.State {
	if p.Store == nil {
		return nil
	}
	return p.Store.State()
}
