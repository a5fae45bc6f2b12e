// Package vdom provides the virtual DOM shared by server rendering and
// client hydration.
//
// A VNode tree is built by route components with the element factories:
//
//	Div(Class("card"),
//	    H1(Text("Title")),
//	    Ul(Range(items, func(it Item, i int) *VNode { return Li(Key(it.ID), Text(it.Title)) })),
//	)
//
// The same tree is produced on both sides of the wire from the same state.
// AssignHIDs numbers interactive elements in pre-order so the client can bind
// handlers to the server-rendered DOM, and Equal/Compare check that two trees
// are structurally identical before reconciliation is trusted.
package vdom
