// Package render turns VNode trees into HTML and wraps rendered markup into
// the full response document.
//
// Rendering is deterministic: attributes are emitted in sorted order, text is
// escaped, event handlers never reach the markup and elements that carry a
// hydration ID get a data-hid attribute plus one data-on-<event> marker per
// handler. Two identical trees always produce byte-identical output.
//
//	r := render.NewRenderer(render.RendererConfig{})
//	markup, err := r.RenderToString(node)
//
// SerializeDocument embeds the markup, the collected style fragments and the
// store snapshot:
//
//	html, err := render.SerializeDocument(render.Document{
//	    Title:  "Posts",
//	    Markup: markup,
//	    Styles: sheet.Fragments(),
//	    State:  snapshot,
//	})
package render
