// Package isomorph serves server-rendered pages that a client can resume
// without re-rendering.
//
// An App matches each GET request against a route table, runs the matched
// routes' data loaders concurrently against a fresh store, renders the
// component tree and sends one document holding the markup, the collected
// styles and the serialized state:
//
//	app, err := isomorph.New(isomorph.Config{
//	    Routes:       app.Routes(),
//	    Reducer:      app.Reducer,
//	    InitialState: app.DefaultState,
//	    Upstream:     "https://jsonplaceholder.typicode.com",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":3000", app)
//
// Requests under /api are proxied to the upstream so browser-side effects
// reach the same data as server-side loaders.
package isomorph

// Version is the framework version.
const Version = "0.1.0"
