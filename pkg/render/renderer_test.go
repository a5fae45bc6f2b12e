package render

import (
	"testing"

	"github.com/vango-dev/isomorph/pkg/vdom"
)

func TestRenderElements(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{"empty div", vdom.Div(), "<div></div>"},
		{"text escaped", vdom.P(vdom.Text(`<a href="x">&'`)), "<p>&lt;a href=&quot;x&quot;&gt;&amp;&#39;</p>"},
		{"sorted attrs", vdom.Div(vdom.ID("x"), vdom.Class("a"), vdom.Data("role", "main")), `<div class="a" data-role="main" id="x"></div>`},
		{"attr escaped", vdom.Div(vdom.Class("a\"b\n")), `<div class="a&quot;b&#10;"></div>`},
		{"text carriage return kept", vdom.P(vdom.Text("a\r\nb")), "<p>a&#13;\nb</p>"},
		{"text nul dropped", vdom.P(vdom.Text("a\x00b")), "<p>ab</p>"},
		{"attr nul replaced", vdom.Div(vdom.Class("a\x00b")), "<div class=\"a\uFFFDb\"></div>"},
		{"void", vdom.Input(vdom.Type("text")), `<input type="text">`},
		{"boolean true", vdom.Button(vdom.Disabled()), "<button disabled></button>"},
		{"key dropped", vdom.Li(vdom.Key(1), vdom.Text("a")), "<li>a</li>"},
		{"fragment", vdom.Fragment(vdom.Text("a"), vdom.Span()), "a<span></span>"},
		{"raw", vdom.Div(vdom.Raw("<b>x</b>")), "<div><b>x</b></div>"},
		{"nil child skipped", vdom.Div(vdom.If(false, vdom.P())), "<div></div>"},
	}

	r := NewRenderer(RendererConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderToString(tt.node)
			if err != nil {
				t.Fatalf("RenderToString: %v", err)
			}
			if got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestRenderHydrationMarkers(t *testing.T) {
	node := vdom.Div(
		vdom.Button(vdom.OnClick(func() {}), vdom.Text("go")),
		vdom.Input(vdom.OnInput(func(string) {}), vdom.OnChange(func() {})),
	)
	vdom.AssignHIDs(node, vdom.NewHIDGenerator())

	got, err := NewRenderer(RendererConfig{}).RenderToString(node)
	if err != nil {
		t.Fatal(err)
	}
	want := `<div><button data-hid="h1" data-on-click="true">go</button>` +
		`<input data-hid="h2" data-on-change="true" data-on-input="true"></div>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}

	got, _ = NewRenderer(RendererConfig{OmitHIDs: true}).RenderToString(node)
	if got != `<div><button>go</button><input></div>` {
		t.Errorf("OmitHIDs output = %s", got)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	build := func() *vdom.VNode {
		return vdom.Div(vdom.ID("a"), vdom.Class("b"), vdom.Data("x", "1"), vdom.Data("y", "2"), vdom.Href("/z"))
	}
	r := NewRenderer(RendererConfig{})
	first, _ := r.RenderToString(build())
	for i := 0; i < 20; i++ {
		got, _ := r.RenderToString(build())
		if got != first {
			t.Fatalf("render %d differs:\n%s\n%s", i, got, first)
		}
	}
}

func TestRenderRejectsUnknownKind(t *testing.T) {
	_, err := NewRenderer(RendererConfig{}).RenderToString(&vdom.VNode{Kind: 99})
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}
