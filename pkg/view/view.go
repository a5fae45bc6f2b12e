// Package view composes matched routes into a single VNode tree and collects
// the style fragments emitted along the way.
package view

import (
	"sync"

	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/store"
	"github.com/vango-dev/isomorph/pkg/vdom"
)

// StyleSheet accumulates style fragments in the order components render.
// One StyleSheet belongs to one render.
type StyleSheet struct {
	mu    sync.Mutex
	frags []string
}

// NewStyleSheet returns an empty accumulator.
func NewStyleSheet() *StyleSheet {
	return &StyleSheet{}
}

// AddStyle appends a fragment. Empty fragments are ignored.
func (s *StyleSheet) AddStyle(css string) {
	if css == "" {
		return
	}
	s.mu.Lock()
	s.frags = append(s.frags, css)
	s.mu.Unlock()
}

// Fragments returns a copy of the collected fragments.
func (s *StyleSheet) Fragments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.frags...)
}

// Len returns the number of collected fragments.
func (s *StyleSheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frags)
}

// WithStyle wraps a component so it contributes css every time it renders.
// The fragment is added before the wrapped component runs, so a parent's
// fragment always precedes those of the children it renders.
func WithStyle(c router.Component, css string) router.Component {
	return func(p router.Props) *vdom.VNode {
		p.AddStyle(css)
		return c(p)
	}
}

// Compose renders the matched chain root first. Each component reaches its
// child through Props.Outlet. styles may be nil (client side). The result is
// nil when matches is empty.
func Compose(matches []router.MatchEntry, location string, s *store.Store, styles router.StyleSink) *vdom.VNode {
	if len(matches) == 0 {
		return nil
	}
	return renderAt(matches, 0, location, s, styles)
}

func renderAt(matches []router.MatchEntry, i int, location string, s *store.Store, styles router.StyleSink) *vdom.VNode {
	m := matches[i]
	props := router.Props{
		Route:    m.Node,
		Params:   m.Params,
		Location: location,
		Store:    s,
		Styles:   styles,
	}
	if i+1 < len(matches) {
		props.Next = func() *vdom.VNode {
			return renderAt(matches, i+1, location, s, styles)
		}
	}
	if m.Node.Component == nil {
		return props.Outlet()
	}
	return m.Node.Component(props)
}
