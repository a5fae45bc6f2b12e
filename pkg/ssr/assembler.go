// Package ssr produces server-rendered documents.
//
// Assembler turns a populated store and a path into markup, collected styles
// and a state snapshot. Pipeline runs the whole request flow on top of it:
// match, prefetch, compose, serialize.
package ssr

import (
	"errors"
	"fmt"

	"github.com/vango-dev/isomorph/pkg/render"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/store"
	"github.com/vango-dev/isomorph/pkg/vdom"
	"github.com/vango-dev/isomorph/pkg/view"
)

// ErrNotFound is returned when the path matches no route.
var ErrNotFound = errors.New("ssr: no route matches path")

// Result is the output of one render.
type Result struct {
	Markup string
	State  store.State // snapshot taken after composition
	Styles []string    // fragments in pre-order
	Tree   *vdom.VNode
}

// Assembler renders matched routes. Safe for concurrent use; every call owns
// its style sheet and HID sequence.
type Assembler struct {
	tree     *router.Tree
	renderer *render.Renderer
}

// NewAssembler creates an Assembler over tree.
func NewAssembler(tree *router.Tree) *Assembler {
	return &Assembler{
		tree:     tree,
		renderer: render.NewRenderer(render.RendererConfig{}),
	}
}

// Tree returns the route tree.
func (a *Assembler) Tree() *router.Tree {
	return a.tree
}

// RenderDocument matches path and renders it against s. The store must
// already hold the prefetched data.
func (a *Assembler) RenderDocument(s *store.Store, path string) (*Result, error) {
	matches := a.tree.Match(path)
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return a.RenderMatches(s, path, matches)
}

// RenderMatches renders an already matched chain.
func (a *Assembler) RenderMatches(s *store.Store, path string, matches []router.MatchEntry) (*Result, error) {
	if len(matches) == 0 {
		return nil, ErrNotFound
	}

	sheet := view.NewStyleSheet()
	node := view.Compose(matches, path, s, sheet)
	vdom.AssignHIDs(node, vdom.NewHIDGenerator())

	markup, err := a.renderer.RenderToString(node)
	if err != nil {
		return nil, fmt.Errorf("ssr: render %s: %w", path, err)
	}

	state, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	return &Result{
		Markup: markup,
		State:  state,
		Styles: sheet.Fragments(),
		Tree:   node,
	}, nil
}
