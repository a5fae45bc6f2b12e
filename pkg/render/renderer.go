package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/isomorph/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// OmitHIDs drops data-hid and data-on-* markers. Useful for static
	// exports that will never be hydrated.
	OmitHIDs bool
}

// Renderer converts VNode trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter writes a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	return r.renderNode(w, node)
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child); err != nil {
				return err
			}
		}
		return nil
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	default:
		return fmt.Errorf("render: unknown node kind %d", node.Kind)
	}
}

func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode) error {
	if node.Tag == "" {
		return fmt.Errorf("render: element without tag")
	}

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(node.Tag)
	writeAttributes(&b, node)

	if node.HID != "" && !r.config.OmitHIDs {
		fmt.Fprintf(&b, ` data-hid="%s"`, escapeAttr(node.HID))
		events := make([]string, 0, 2)
		for key := range node.Handlers() {
			events = append(events, strings.ToLower(key[2:]))
		}
		sort.Strings(events)
		for _, ev := range events {
			fmt.Fprintf(&b, ` data-on-%s="true"`, ev)
		}
	}
	b.WriteByte('>')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	if vdom.IsVoidElement(node.Tag) {
		return nil
	}

	for _, child := range node.Children {
		if err := r.renderNode(w, child); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "</%s>", node.Tag)
	return err
}

// writeAttributes renders attributes in sorted order. The string forms come
// from vdom.AttrStrings so hydration compares exactly what was rendered.
func writeAttributes(b *strings.Builder, node *vdom.VNode) {
	attrs := vdom.AttrStrings(node)
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := attrs[key]
		if isBooleanAttr(key) && value == "" {
			b.WriteByte(' ')
			b.WriteString(key)
			continue
		}
		fmt.Fprintf(b, ` %s="%s"`, key, escapeAttr(value))
	}
}

var booleanAttrs = map[string]bool{
	"async":     true,
	"autofocus": true,
	"checked":   true,
	"defer":     true,
	"disabled":  true,
	"hidden":    true,
	"multiple":  true,
	"open":      true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
