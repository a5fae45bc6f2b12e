package vdom

import (
	"fmt"
	"sort"
	"strconv"
)

// Difference is one structural divergence between two trees.
type Difference struct {
	Path   string // e.g. "div[0]/ul[1]/li[2]"
	Reason string
}

func (d Difference) String() string {
	return d.Path + ": " + d.Reason
}

// Equal reports whether two trees render to the same markup and carry the
// same keys and hydration IDs. Event handler identity is ignored.
func Equal(a, b *VNode) bool {
	return len(Compare(a, b)) == 0
}

// Compare lists every structural difference between two trees. Fragments are
// flattened before children are compared.
func Compare(a, b *VNode) []Difference {
	var diffs []Difference
	compareNode("", a, b, &diffs)
	return diffs
}

func compareNode(path string, a, b *VNode, diffs *[]Difference) {
	add := func(format string, args ...any) {
		p := path
		if p == "" {
			p = "/"
		}
		*diffs = append(*diffs, Difference{Path: p, Reason: fmt.Sprintf(format, args...)})
	}

	switch {
	case a == nil && b == nil:
		return
	case a == nil || b == nil:
		add("one side is nil")
		return
	}

	if a.Kind != b.Kind {
		add("kind %s != %s", a.Kind, b.Kind)
		return
	}

	switch a.Kind {
	case KindText, KindRaw:
		if a.Text != b.Text {
			add("text %q != %q", a.Text, b.Text)
		}
		return
	case KindElement:
		if a.Tag != b.Tag {
			add("tag <%s> != <%s>", a.Tag, b.Tag)
			return
		}
		if a.Key != b.Key {
			add("key %q != %q", a.Key, b.Key)
		}
		if a.HID != b.HID {
			add("hid %q != %q", a.HID, b.HID)
		}
		compareAttrs(a, b, add)
	}

	ac, bc := Flatten(a.Children), Flatten(b.Children)
	if len(ac) != len(bc) {
		add("child count %d != %d", len(ac), len(bc))
	}
	n := min(len(ac), len(bc))
	for i := 0; i < n; i++ {
		compareNode(path+"/"+segment(ac[i], i), ac[i], bc[i], diffs)
	}
}

func compareAttrs(a, b *VNode, add func(string, ...any)) {
	av, bv := AttrStrings(a), AttrStrings(b)
	keys := make([]string, 0, len(av)+len(bv))
	for k := range av {
		keys = append(keys, k)
	}
	for k := range bv {
		if _, ok := av[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		x, xok := av[k]
		y, yok := bv[k]
		switch {
		case !xok:
			add("attribute %s missing on left", k)
		case !yok:
			add("attribute %s missing on right", k)
		case x != y:
			add("attribute %s %q != %q", k, x, y)
		}
	}
}

// AttrStrings returns the rendered string form of every attribute that would
// appear in markup. Event handlers, the key prop, nil values and false
// booleans are omitted; true booleans render as the empty string.
func AttrStrings(v *VNode) map[string]string {
	out := make(map[string]string, len(v.Props))
	for key, value := range v.Props {
		if key == "key" || value == nil || IsEventProp(key, value) {
			continue
		}
		if key == "className" {
			key = "class"
		}
		switch val := value.(type) {
		case bool:
			if val {
				out[key] = ""
			}
		case string:
			out[key] = val
		case int:
			out[key] = strconv.Itoa(val)
		case float64:
			out[key] = strconv.FormatFloat(val, 'f', -1, 64)
		case func(), func(string), func(any):
			// handler stored under a non-event name; never rendered
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return out
}

func segment(n *VNode, i int) string {
	name := n.Kind.String()
	if n.Kind == KindElement {
		name = n.Tag
	}
	return name + "[" + strconv.Itoa(i) + "]"
}
