// Package hydrate resumes a server-rendered page on the client.
//
// The browser is modelled with golang.org/x/net/html: the served document is
// parsed, the serialized state is extracted and decoded into a fresh store,
// and the client-side component tree is reconciled against the existing
// mount element without replacing it. Divergences are reported as
// Mismatch values; they are logged and counted but never fatal.
//
//	raw, _ := hydrate.ExtractState(doc, "")
//	s, ok := hydrate.Bootstrap(raw, opts)
//	mount, _ := hydrate.MountPoint(doc, "")
//	root, err := hydrate.Hydrate(ctx, mount, tree, s, "/")
package hydrate

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/isomorph/pkg/render"
)

// ErrNoState is returned when the document carries no state script.
var ErrNoState = errors.New("hydrate: document has no serialized state")

// ExtractState returns the JSON assigned to window.<stateVar> by the
// document's bootstrap script. An empty stateVar means the default.
func ExtractState(document, stateVar string) ([]byte, error) {
	if stateVar == "" {
		stateVar = render.DefaultStateVar
	}
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("hydrate: parse document: %w", err)
	}

	prefix := "window." + stateVar
	var found []byte
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "script" || n.FirstChild == nil {
			return true
		}
		body := strings.TrimSpace(textContent(n))
		rest, ok := strings.CutPrefix(body, prefix)
		if !ok {
			return true
		}
		rest = strings.TrimSpace(rest)
		rest, ok = strings.CutPrefix(rest, "=")
		if !ok {
			return true
		}
		rest = strings.TrimSuffix(strings.TrimSpace(rest), ";")
		found = []byte(strings.TrimSpace(rest))
		return false
	})
	if found == nil {
		return nil, ErrNoState
	}
	return found, nil
}

// MountPoint parses document and returns the element with the given id.
// An empty id means the default mount id.
func MountPoint(document, id string) (*html.Node, error) {
	if id == "" {
		id = render.DefaultMountID
	}
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("hydrate: parse document: %w", err)
	}

	var mount *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attrValue(n, "id") == id {
			mount = n
			return false
		}
		return true
	})
	if mount == nil {
		return nil, fmt.Errorf("hydrate: no element with id %q", id)
	}
	return mount, nil
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// walk visits nodes in document order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
