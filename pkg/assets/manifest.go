// Package assets maps document asset URLs to their fingerprinted names.
//
// A bundler writes manifest.json next to its output:
//
//	{
//	  "main.js": "main.3f9a2c1d.js",
//	  "app.css": "app.e5f6a7b8.css"
//	}
//
// The document's client script and stylesheet hrefs are rewritten through
// the manifest so production pages reference cacheable files:
//
//	m, _ := assets.Load("public/manifest.json")
//	m.Resolve("/main.js") // "/main.3f9a2c1d.js"
package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"
)

// Manifest holds source to fingerprinted name mappings. Keys and values are
// relative to the static root. It is safe for concurrent use.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{entries: make(map[string]string)}
}

// Load reads a manifest file.
func Load(file string) (*Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("assets: %s: %w", file, err)
	}
	return m, nil
}

// Parse decodes manifest JSON. Leading slashes on keys and values are
// dropped.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	m := NewManifest()
	for k, v := range raw {
		m.Set(k, v)
	}
	return m, nil
}

// Set adds or replaces an entry.
func (m *Manifest) Set(source, fingerprinted string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[strings.TrimPrefix(source, "/")] = strings.TrimPrefix(fingerprinted, "/")
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Resolve rewrites an asset URL. Absolute URLs, protocol-relative URLs and
// unknown names are returned unchanged. A query or fragment is kept.
func (m *Manifest) Resolve(href string) string {
	if m == nil || href == "" || strings.Contains(href, "://") || strings.HasPrefix(href, "//") {
		return href
	}

	p, suffix := href, ""
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p, suffix = p[:i], p[i:]
	}
	rooted := strings.HasPrefix(p, "/")
	key := strings.TrimPrefix(path.Clean("/"+p), "/")

	m.mu.RLock()
	resolved, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return href
	}
	if rooted {
		resolved = "/" + resolved
	}
	return resolved + suffix
}

// ResolveAll rewrites each href.
func (m *Manifest) ResolveAll(hrefs []string) []string {
	if len(hrefs) == 0 {
		return hrefs
	}
	out := make([]string, len(hrefs))
	for i, h := range hrefs {
		out[i] = m.Resolve(h)
	}
	return out
}
