package vdom

import "testing"

func TestAssignHIDsPreOrder(t *testing.T) {
	tree := Div(
		Button(OnClick(func() {})),
		Div(
			Input(OnInput(func(string) {})),
			Span(Text("static")),
		),
		Button(OnClick(func() {})),
	)

	AssignHIDs(tree, NewHIDGenerator())

	if tree.HID != "" {
		t.Errorf("static root got HID %q", tree.HID)
	}
	if got := tree.Children[0].HID; got != "h1" {
		t.Errorf("first button HID = %q, want h1", got)
	}
	if got := tree.Children[1].Children[0].HID; got != "h2" {
		t.Errorf("input HID = %q, want h2", got)
	}
	if got := tree.Children[1].Children[1].HID; got != "" {
		t.Errorf("span HID = %q, want empty", got)
	}
	if got := tree.Children[2].HID; got != "h3" {
		t.Errorf("second button HID = %q, want h3", got)
	}

	hids := CollectHIDs(tree)
	if len(hids) != 3 {
		t.Errorf("collected %d HIDs, want 3", len(hids))
	}
}

func TestHIDGeneratorReset(t *testing.T) {
	g := NewHIDGenerator()
	g.Next()
	g.Next()
	g.Reset()
	if got := g.Next(); got != "h1" {
		t.Errorf("after reset Next() = %q, want h1", got)
	}
}
