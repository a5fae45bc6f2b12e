package vdom

import "testing"

func TestCreateElementArguments(t *testing.T) {
	var clicked bool
	node := Div(
		ID("root"),
		nil,
		[]Attr{Class("a", "b"), Key("k1")},
		"hello",
		Span(Text("x")),
		[]*VNode{P(), nil},
		OnClick(func() { clicked = true }),
	)

	if node.Kind != KindElement || node.Tag != "div" {
		t.Fatalf("unexpected node: %v <%s>", node.Kind, node.Tag)
	}
	if got := node.Props["id"]; got != "root" {
		t.Errorf("id = %v, want root", got)
	}
	if got := node.Props["class"]; got != "a b" {
		t.Errorf("class = %v, want %q", got, "a b")
	}
	if node.Key != "k1" {
		t.Errorf("Key = %q, want k1", node.Key)
	}
	if len(node.Children) != 3 {
		t.Fatalf("children = %d, want 3", len(node.Children))
	}
	if node.Children[0].Kind != KindText || node.Children[0].Text != "hello" {
		t.Errorf("first child = %+v, want text hello", node.Children[0])
	}
	if !node.IsInteractive() {
		t.Fatal("expected node with onclick to be interactive")
	}
	h, ok := node.Handlers()["onclick"].(func())
	if !ok {
		t.Fatal("onclick handler missing")
	}
	h()
	if !clicked {
		t.Error("handler not invoked")
	}
}

func TestIsEventProp(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  bool
	}{
		{"func", "onclick", func() {}, true},
		{"string func", "oninput", func(string) {}, true},
		{"string value", "onclick", "alert(1)", false},
		{"nil", "onclick", nil, false},
		{"not prefixed", "click", func() {}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEventProp(tt.key, tt.value); got != tt.want {
				t.Errorf("IsEventProp(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestRangeAndFlatten(t *testing.T) {
	items := []string{"a", "b", "c"}
	list := Ul(Range(items, func(s string, i int) *VNode {
		if s == "b" {
			return nil
		}
		return Li(Key(i), Text(s))
	}))
	if len(list.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(list.Children))
	}
	if list.Children[1].Key != "2" {
		t.Errorf("key = %q, want 2", list.Children[1].Key)
	}

	flat := Flatten([]*VNode{Fragment(Text("x"), Fragment(Text("y"))), Text("z")})
	if len(flat) != 3 {
		t.Fatalf("flattened = %d, want 3", len(flat))
	}
	if flat[1].Text != "y" {
		t.Errorf("flat[1] = %q, want y", flat[1].Text)
	}
}
