package hydrate

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/isomorph/pkg/api"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/ssr"
	"github.com/vango-dev/isomorph/pkg/store"
	"github.com/vango-dev/isomorph/pkg/vdom"
	"github.com/vango-dev/isomorph/pkg/view"
)

type post struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func reducer(s store.State, a store.Action) store.State {
	switch a.Type {
	case "change_list":
		s["list"] = a.Payload
	case "select":
		s["selected"] = a.Payload
	}
	return s
}

func defaultState() store.State { return store.State{"list": []any{}} }

func fetchList(ctx context.Context, s *store.Store, _ map[string]string) error {
	return s.Run(ctx, func(ctx context.Context, dispatch store.DispatchFunc, _ store.GetStateFunc, c api.Client) error {
		body, err := c.Get(ctx, "/posts")
		if err != nil {
			return err
		}
		var list []post
		if err := json.Unmarshal(body, &list); err != nil {
			return err
		}
		dispatch(store.Action{Type: "change_list", Payload: list})
		return nil
	})
}

func testTree() *router.Tree {
	app := view.WithStyle(func(p router.Props) *vdom.VNode {
		return vdom.Div(vdom.Class("shell"), vdom.Header(vdom.Text("Blog")), p.Outlet())
	}, ".shell{}")

	home := func(p router.Props) *vdom.VNode {
		list, _ := store.Select[[]post](p.State(), "list")
		selected, _ := store.Select[string](p.State(), "selected")
		return vdom.Fragment(
			vdom.P(vdom.Text("Selected: "), vdom.Text(selected)),
			vdom.Ul(vdom.Range(list, func(it post, _ int) *vdom.VNode {
				title := it.Title
				return vdom.Li(vdom.Key(it.ID),
					vdom.Button(vdom.OnClick(func() {
						p.Store.Dispatch(store.Action{Type: "select", Payload: title})
					}), vdom.Text(title)))
			})),
		)
	}

	return router.MustTree([]*router.RouteNode{{
		Path: "/", Key: "app", Component: app,
		Routes: []*router.RouteNode{{
			Path: "/", Exact: true, Key: "home", Component: home,
			LoadData: fetchList,
			OnMount: func(ctx context.Context, s *store.Store, params map[string]string) error {
				list, _ := store.Select[[]post](s.State(), "list")
				if len(list) > 0 {
					return nil
				}
				return fetchList(ctx, s, params)
			},
		}},
	}})
}

func countingClient(calls *atomic.Int32) api.Client {
	return api.Func(func(ctx context.Context, p string) (json.RawMessage, error) {
		calls.Add(1)
		return json.RawMessage(`[{"id":1,"title":"one & only"},{"id":2,"title":"two"}]`), nil
	})
}

func serverDocument(t *testing.T, tree *router.Tree) (*ssr.Page, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	page, err := ssr.NewPipeline(ssr.Options{
		Tree:         tree,
		Reducer:      reducer,
		InitialState: defaultState,
		Client:       countingClient(&calls),
	}).Render(context.Background(), "/")
	if err != nil {
		t.Fatalf("server render: %v", err)
	}
	return page, &calls
}

func TestResumeAdoptsServerMarkup(t *testing.T) {
	tree := testTree()
	page, serverCalls := serverDocument(t, tree)

	var clientCalls atomic.Int32
	root, err := Resume(context.Background(), page.HTML, tree, "/", Options{
		Reducer: reducer,
		Default: defaultState,
		Client:  countingClient(&clientCalls),
	})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	defer root.Close()

	if len(root.Mismatches) != 0 {
		t.Fatalf("unexpected mismatches: %v", root.Mismatches)
	}
	if diff := cmp.Diff(page.Result.State, root.Store().State()); diff != "" {
		t.Errorf("client state differs from server snapshot (-server +client):\n%s", diff)
	}
	if clientCalls.Load() != 0 {
		t.Errorf("client fetched %d times; prefetched data must be reused", clientCalls.Load())
	}
	if serverCalls.Load() != 1 {
		t.Errorf("server fetched %d times, want 1", serverCalls.Load())
	}
	if root.Renders() != 0 {
		t.Errorf("hydration must not re-render, got %d renders", root.Renders())
	}
	if diffs := vdom.Compare(page.Result.Tree, root.Tree()); len(diffs) != 0 {
		t.Errorf("client tree differs from server tree: %v", diffs)
	}

	node, ok := root.Bound("h2")
	if !ok || node.Data != "button" {
		t.Fatalf("h2 not bound to a button: %v", node)
	}
}

func TestTriggerRerenders(t *testing.T) {
	tree := testTree()
	page, _ := serverDocument(t, tree)

	root, err := Resume(context.Background(), page.HTML, tree, "/", Options{Reducer: reducer, Default: defaultState})
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close()

	if err := root.Trigger("h2", "click", nil); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if root.Renders() != 1 {
		t.Errorf("Renders() = %d, want 1", root.Renders())
	}
	markup, err := root.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(markup, "<p>Selected: two</p>") {
		t.Errorf("re-rendered markup missing selection:\n%s", markup)
	}
	if _, ok := root.Bound("h1"); !ok {
		t.Error("bindings must be rebuilt after re-render")
	}

	if err := root.Trigger("h9", "click", nil); err == nil {
		t.Error("expected error for unknown hid")
	}
	if err := root.Trigger("h1", "input", nil); err == nil {
		t.Error("expected error for missing handler")
	}
}

func TestHydrateReportsMismatches(t *testing.T) {
	tree := testTree()
	page, _ := serverDocument(t, tree)
	tampered := strings.Replace(page.HTML, ">two</button>", ">TWO</button>", 1)
	tampered = strings.Replace(tampered, `class="shell"`, `class="other"`, 1)

	root, err := Resume(context.Background(), tampered, tree, "/", Options{Reducer: reducer, Default: defaultState})
	if err != nil {
		t.Fatalf("mismatches must not be fatal: %v", err)
	}
	defer root.Close()

	if len(root.Mismatches) != 2 {
		t.Fatalf("got %d mismatches, want 2: %v", len(root.Mismatches), root.Mismatches)
	}
	if !strings.Contains(root.Mismatches[0].Want, `class="shell"`) {
		t.Errorf("first mismatch = %v", root.Mismatches[0])
	}
	if root.Mismatches[1].Want != `"two"` {
		t.Errorf("second mismatch = %v", root.Mismatches[1])
	}
}

func TestHydrateFallbackRunsMountHook(t *testing.T) {
	tree := testTree()
	doc := `<!DOCTYPE html><html><head></head><body><div id="app"></div><script src="/main.js"></script></body></html>`

	var calls atomic.Int32
	root, err := Resume(context.Background(), doc, tree, "/", Options{
		Reducer: reducer,
		Default: defaultState,
		Client:  countingClient(&calls),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close()

	if len(root.Mismatches) == 0 {
		t.Error("empty container should be reported as a mismatch")
	}
	if calls.Load() != 1 {
		t.Errorf("mount hook fetched %d times, want 1", calls.Load())
	}
	if root.Renders() != 1 {
		t.Errorf("Renders() = %d, want 1", root.Renders())
	}
	markup, err := root.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(markup, "one &amp; only") {
		t.Errorf("container not re-rendered with fetched data:\n%s", markup)
	}
}

func TestHydrateUnknownPath(t *testing.T) {
	mount, err := MountPoint(`<div id="app"></div>`, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Hydrate(context.Background(), mount, testTree(), store.New(nil, nil, nil), "/nope"); err != ErrNoRoute {
		t.Errorf("err = %v, want ErrNoRoute", err)
	}
}

func TestHydrateControlCharacters(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{"crlf", "a\r\nb"},
		{"lone cr", "a\rb"},
		{"nul", "nul\x00x"},
		{"tab and newline", "tab\tand\nnewline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title := tt.title
			tree := router.MustTree([]*router.RouteNode{{
				Path: "/", Exact: true, Key: "page",
				Component: func(p router.Props) *vdom.VNode {
					s, _ := store.Select[string](p.State(), "title")
					return vdom.Div(vdom.Data("title", s), vdom.P(vdom.Text(s)))
				},
			}})
			initial := func() store.State { return store.State{"title": title} }

			page, err := ssr.NewPipeline(ssr.Options{
				Tree:         tree,
				InitialState: initial,
				Client:       api.Func(func(context.Context, string) (json.RawMessage, error) { return nil, nil }),
			}).Render(context.Background(), "/")
			if err != nil {
				t.Fatalf("server render: %v", err)
			}

			root, err := Resume(context.Background(), page.HTML, tree, "/", Options{Default: initial})
			if err != nil {
				t.Fatalf("Resume: %v", err)
			}
			defer root.Close()

			if len(root.Mismatches) != 0 {
				t.Errorf("unexpected mismatches: %v", root.Mismatches)
			}
			if got, _ := store.Select[string](root.Store().State(), "title"); got != title {
				t.Errorf("restored title = %q, want %q", got, title)
			}
		})
	}
}
