// Package dev provides live reload for `isomorph serve --dev`.
//
// A polling Watcher reports changes under the configured watch paths and a
// ReloadServer pushes them to connected browsers over WebSocket. The browser
// side is DevClientScript, which the server appends to every document.
//
// # Reload Protocol
//
// The browser connects to /_isomorph/reload. Messages are JSON-encoded:
//
//	{"type": "reload"}                // full page reload
//	{"type": "css"}                   // stylesheet refresh
//	{"type": "error", "error": "..."} // shows an overlay
//	{"type": "clear"}                 // clears the overlay
package dev
