package vdom

import (
	"strings"
	"testing"
)

func build(items []string, onClick func()) *VNode {
	return Div(Class("list"),
		H1(Text("Posts")),
		Ul(Range(items, func(s string, i int) *VNode { return Li(Key(i), Text(s)) })),
		Button(OnClick(onClick), Text("more")),
	)
}

func TestEqualIgnoresHandlerIdentity(t *testing.T) {
	a := build([]string{"x", "y"}, func() {})
	b := build([]string{"x", "y"}, func() {})
	AssignHIDs(a, NewHIDGenerator())
	AssignHIDs(b, NewHIDGenerator())

	if diffs := Compare(a, b); len(diffs) != 0 {
		t.Fatalf("expected equal trees, got %v", diffs)
	}
}

func TestCompareReportsDifferences(t *testing.T) {
	tests := []struct {
		name   string
		a, b   *VNode
		reason string
	}{
		{"text", P(Text("a")), P(Text("b")), "text"},
		{"tag", Div(), Span(), "tag"},
		{"attr", Div(Class("x")), Div(Class("y")), "attribute class"},
		{"missing attr", Div(ID("x")), Div(), "missing on right"},
		{"child count", Ul(Li()), Ul(Li(), Li()), "child count"},
		{"kind", Div(Text("a")), Div(Raw("a")), "kind"},
		{"nil", Div(), nil, "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffs := Compare(tt.a, tt.b)
			if len(diffs) == 0 {
				t.Fatal("expected a difference")
			}
			if !strings.Contains(diffs[0].Reason, tt.reason) {
				t.Errorf("reason = %q, want substring %q", diffs[0].Reason, tt.reason)
			}
		})
	}
}

func TestCompareFlattensFragments(t *testing.T) {
	a := Div(Fragment(Text("a"), Span()), P())
	b := Div(Text("a"), Span(), P())
	if !Equal(a, b) {
		t.Errorf("fragment flattening should make trees equal: %v", Compare(a, b))
	}
}

func TestAttrStrings(t *testing.T) {
	n := Input(Type("checkbox"), Disabled(), attr("checked", false), attr("tabindex", 2), Key("k"), OnChange(func() {}))
	got := AttrStrings(n)
	want := map[string]string{"type": "checkbox", "disabled": "", "tabindex": "2"}
	if len(got) != len(want) {
		t.Fatalf("AttrStrings = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}
