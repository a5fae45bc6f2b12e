package vdom

import "strconv"

// HIDGenerator produces sequential hydration IDs.
type HIDGenerator struct {
	next uint32
}

// NewHIDGenerator creates a generator starting at h1.
func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{next: 1}
}

// Next returns the next hydration ID.
func (g *HIDGenerator) Next() string {
	id := "h" + strconv.FormatUint(uint64(g.next), 10)
	g.next++
	return id
}

// Reset restarts the sequence.
func (g *HIDGenerator) Reset() {
	g.next = 1
}

// AssignHIDs walks the tree in pre-order and gives every interactive element
// a hydration ID. Server and client assign identical IDs to identical trees.
func AssignHIDs(node *VNode, gen *HIDGenerator) {
	if node == nil {
		return
	}
	if node.IsInteractive() {
		node.HID = gen.Next()
	}
	for _, child := range node.Children {
		AssignHIDs(child, gen)
	}
}

// CollectHIDs returns all nodes that carry a HID, keyed by HID.
func CollectHIDs(node *VNode) map[string]*VNode {
	out := make(map[string]*VNode)
	collectHIDs(node, out)
	return out
}

func collectHIDs(node *VNode, out map[string]*VNode) {
	if node == nil {
		return
	}
	if node.HID != "" {
		out[node.HID] = node
	}
	for _, child := range node.Children {
		collectHIDs(child, out)
	}
}
