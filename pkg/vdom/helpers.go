package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return &VNode{Kind: KindText, Text: fmt.Sprintf(format, args...)}
}

// Raw creates a raw HTML node. The content is not escaped.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{Kind: KindFragment}
	for _, child := range children {
		switch v := child.(type) {
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}
	return node
}

// If returns the node when the condition holds, nil otherwise.
func If(cond bool, node *VNode) *VNode {
	if cond {
		return node
	}
	return nil
}

// IfElse returns one of two nodes depending on the condition.
func IfElse(cond bool, then, otherwise *VNode) *VNode {
	if cond {
		return then
	}
	return otherwise
}

// Range maps a slice to nodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// Key sets the reconciliation key.
func Key(key any) Attr {
	return attr("key", fmt.Sprint(key))
}

// Flatten returns the node's children with fragments expanded in place.
func Flatten(children []*VNode) []*VNode {
	out := make([]*VNode, 0, len(children))
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.Kind == KindFragment {
			out = append(out, Flatten(child.Children)...)
			continue
		}
		out = append(out, child)
	}
	return out
}
