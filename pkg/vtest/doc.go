// Package vtest provides helpers for testing route components in isolation.
//
// A component is a plain function of router.Props, so a test builds the
// props it needs, calls the component and asserts on the rendered HTML:
//
//	func TestHome(t *testing.T) {
//	    p := vtest.NewProps().
//	        WithState(store.State{"list": []any{map[string]any{"id": 1, "title": "hi"}}}).
//	        Build()
//	    vtest.ExpectContains(t, Home(p), "<li>hi</li>")
//	}
//
// # Nested Routes
//
// A layout is tested with a stand-in child:
//
//	p := vtest.NewProps().WithOutlet(vdom.P(vdom.Text("child"))).Build()
//	vtest.ExpectContains(t, Shell(p), "<p>child</p>")
//
// # Styles
//
// The builder collects style fragments the component contributes:
//
//	b := vtest.NewProps()
//	Login(b.Build())
//	b.Styles() // fragments in render order
//
// Rendering uses the server renderer with hydration ids omitted, so
// assertions match plain markup. Use RenderWithIDs when ids matter.
package vtest
