package hydrate

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/isomorph/pkg/vdom"
)

// Mismatch is one divergence between server markup and the client tree.
type Mismatch struct {
	Path string // e.g. "div[0]/ul[1]/li[0]"
	Want string // what the client tree expects
	Got  string // what the server DOM holds
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: want %s, got %s", m.Path, m.Want, m.Got)
}

type binding struct {
	vnode *vdom.VNode
	node  *html.Node
}

type reconciler struct {
	mismatches []Mismatch
	bindings   map[string]binding
}

func (r *reconciler) mismatch(path, want, got string) {
	if path == "" {
		path = "/"
	}
	r.mismatches = append(r.mismatches, Mismatch{Path: path, Want: want, Got: got})
}

// children reconciles the child list of parent against vchildren.
func (r *reconciler) children(path string, parent *html.Node, vchildren []*vdom.VNode) {
	dom := domChildren(parent)
	items := expected(vdom.Flatten(vchildren))

	di := 0
	for i, it := range items {
		p := path + "/" + it.label(i)

		if it.raw != nil {
			n := r.raw(p, parent, it.raw, dom[di:])
			di += n
			continue
		}

		if di >= len(dom) {
			r.mismatch(p, it.describe(), "nothing")
			continue
		}
		d := dom[di]
		di++

		if it.text != nil {
			if d.Type != html.TextNode {
				r.mismatch(p, it.describe(), describeDOM(d))
				continue
			}
			if d.Data != *it.text {
				r.mismatch(p, it.describe(), strconv.Quote(d.Data))
			}
			continue
		}

		r.element(p, d, it.node)
	}

	for ; di < len(dom); di++ {
		r.mismatch(path+"/"+strconv.Itoa(di), "nothing", describeDOM(dom[di]))
	}
}

func (r *reconciler) element(path string, d *html.Node, v *vdom.VNode) {
	if d.Type != html.ElementNode || d.Data != v.Tag {
		r.mismatch(path, "<"+v.Tag+">", describeDOM(d))
		return
	}

	want := vdom.AttrStrings(v)
	for k, val := range want {
		want[k] = parsedAttr(val)
	}
	got := make(map[string]string, len(d.Attr))
	hid := ""
	for _, a := range d.Attr {
		switch {
		case a.Key == "data-hid":
			hid = a.Val
		case strings.HasPrefix(a.Key, "data-on-"):
			// handler markers; handlers are compared through the HID
		default:
			got[a.Key] = a.Val
		}
	}
	for _, k := range unionKeys(want, got) {
		w, wok := want[k]
		g, gok := got[k]
		switch {
		case !gok:
			r.mismatch(path, fmt.Sprintf("attribute %s=%q", k, w), "no attribute")
		case !wok:
			r.mismatch(path, "no attribute", fmt.Sprintf("attribute %s=%q", k, g))
		case w != g:
			r.mismatch(path, fmt.Sprintf("attribute %s=%q", k, w), fmt.Sprintf("attribute %s=%q", k, g))
		}
	}

	if hid != v.HID {
		r.mismatch(path, "hid "+strconv.Quote(v.HID), "hid "+strconv.Quote(hid))
	} else if v.HID != "" {
		r.bindings[v.HID] = binding{vnode: v, node: d}
	}

	if vdom.IsVoidElement(v.Tag) {
		return
	}
	r.children(path, d, v.Children)
}

// raw compares a raw HTML vnode with the DOM nodes it produced and returns
// how many DOM nodes it accounts for.
func (r *reconciler) raw(path string, parent *html.Node, v *vdom.VNode, dom []*html.Node) int {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	if parent.Type == html.ElementNode {
		ctx = &html.Node{Type: html.ElementNode, Data: parent.Data, DataAtom: parent.DataAtom}
	}
	parsed, err := html.ParseFragment(strings.NewReader(v.Text), ctx)
	if err != nil {
		r.mismatch(path, "parsable raw html", err.Error())
		return 0
	}
	parsed = dropComments(parsed)
	if len(parsed) > len(dom) {
		r.mismatch(path, fmt.Sprintf("%d raw nodes", len(parsed)), fmt.Sprintf("%d nodes", len(dom)))
		return len(dom)
	}
	want, err := renderNodes(parsed)
	if err != nil {
		r.mismatch(path, "renderable raw html", err.Error())
		return len(parsed)
	}
	got, err := renderNodes(dom[:len(parsed)])
	if err != nil {
		r.mismatch(path, "raw "+strconv.Quote(want), err.Error())
		return len(parsed)
	}
	if want != got {
		r.mismatch(path, "raw "+strconv.Quote(want), strconv.Quote(got))
	}
	return len(parsed)
}

// item is one expected DOM child: a coalesced text run, an element or raw html.
type item struct {
	text *string
	node *vdom.VNode
	raw  *vdom.VNode
}

func (it item) label(i int) string {
	switch {
	case it.text != nil:
		return "#text[" + strconv.Itoa(i) + "]"
	case it.raw != nil:
		return "#raw[" + strconv.Itoa(i) + "]"
	default:
		return it.node.Tag + "[" + strconv.Itoa(i) + "]"
	}
}

func (it item) describe() string {
	switch {
	case it.text != nil:
		return strconv.Quote(*it.text)
	case it.raw != nil:
		return "raw html"
	default:
		return "<" + it.node.Tag + ">"
	}
}

// expected merges adjacent text vnodes the way an HTML parser merges
// adjacent text, and drops empty text runs which produce no DOM node.
func expected(children []*vdom.VNode) []item {
	var out []item
	var run *strings.Builder
	flush := func() {
		if run != nil && run.Len() > 0 {
			s := run.String()
			out = append(out, item{text: &s})
		}
		run = nil
	}
	for _, c := range children {
		switch c.Kind {
		case vdom.KindText:
			if run == nil {
				run = &strings.Builder{}
			}
			run.WriteString(parsedText(c.Text))
		case vdom.KindRaw:
			flush()
			out = append(out, item{raw: c})
		default:
			flush()
			out = append(out, item{node: c})
		}
	}
	flush()
	return out
}

// parsedText is s as the DOM holds it after the server markup is parsed:
// the renderer escapes carriage returns, and NUL never reaches a text node.
func parsedText(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}

// parsedAttr is an attribute value as the DOM holds it: the parser turns
// NUL into U+FFFD.
func parsedAttr(s string) string {
	return strings.ReplaceAll(s, "\x00", "\uFFFD")
}

func domChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		out = append(out, c)
	}
	return out
}

func dropComments(nodes []*html.Node) []*html.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type != html.CommentNode {
			out = append(out, n)
		}
	}
	return out
}

func renderNodes(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func describeDOM(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return "text " + strconv.Quote(n.Data)
	case html.ElementNode:
		return "<" + n.Data + ">"
	default:
		return "node type " + strconv.Itoa(int(n.Type))
	}
}

func unionKeys(a, b map[string]string) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
