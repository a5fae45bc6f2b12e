package ssr

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/isomorph/pkg/api"
	"github.com/vango-dev/isomorph/pkg/prefetch"
	"github.com/vango-dev/isomorph/pkg/router"
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
	case "set":
		kv := a.Payload.([2]any)
		s[kv[0].(string)] = kv[1]
	}
	return s
}

type fixture struct {
	tree          *router.Tree
	rendered      atomic.Int32
	homeLoads     atomic.Int32
	failHome      bool
	homeLoadDelay time.Duration
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{}
	app := view.WithStyle(func(p router.Props) *vdom.VNode {
		f.rendered.Add(1)
		return vdom.Div(vdom.Header(vdom.A(vdom.Href("/login"), vdom.Text("Login"))), p.Outlet())
	}, ".header{color:red}")
	home := view.WithStyle(func(p router.Props) *vdom.VNode {
		list, _ := store.Select[[]post](p.State(), "list")
		return vdom.Ul(vdom.Range(list, func(it post, _ int) *vdom.VNode {
			return vdom.Li(vdom.Key(it.ID), vdom.Text(it.Title))
		}))
	}, ".list{margin:0}")
	login := view.WithStyle(func(p router.Props) *vdom.VNode {
		return vdom.Button(vdom.OnClick(func() {}), vdom.Text("Log in"))
	}, ".login{}")

	loadList := func(ctx context.Context, s *store.Store, _ map[string]string) error {
		f.homeLoads.Add(1)
		time.Sleep(f.homeLoadDelay)
		if f.failHome {
			return errors.New("upstream 503")
		}
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

	f.tree = router.MustTree([]*router.RouteNode{{
		Path: "/", Key: "app", Component: app,
		Routes: []*router.RouteNode{
			{Path: "/", Exact: true, Key: "home", Component: home, LoadData: loadList},
			{Path: "/login", Exact: true, Key: "login", Component: login},
		},
	}})
	return f
}

var upstream = api.Func(func(ctx context.Context, p string) (json.RawMessage, error) {
	return json.RawMessage(`[{"id":1,"title":"first"},{"id":2,"title":"<second>"}]`), nil
})

func (f *fixture) pipeline() *Pipeline {
	return NewPipeline(Options{
		Tree:         f.tree,
		Reducer:      reducer,
		InitialState: func() store.State { return store.State{"list": []any{}} },
		Client:       upstream,
		Title:        "isomorph",
	})
}

func TestRenderHome(t *testing.T) {
	f := newFixture(t)
	page, err := f.pipeline().Render(context.Background(), "/")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if page.Report.Awaited != 1 {
		t.Errorf("Awaited = %d, want 1", page.Report.Awaited)
	}
	want := store.State{"list": []any{
		map[string]any{"id": float64(1), "title": "first"},
		map[string]any{"id": float64(2), "title": "<second>"},
	}}
	if diff := cmp.Diff(want, page.Result.State); diff != "" {
		t.Errorf("state (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{".header{color:red}", ".list{margin:0}"}, page.Result.Styles); diff != "" {
		t.Errorf("styles (-want +got):\n%s", diff)
	}
	for _, part := range []string{"<li>first</li>", "<li>&lt;second&gt;</li>", `<style>.header{color:red}` + "\n" + `.list{margin:0}</style>`} {
		if !strings.Contains(page.HTML, part) {
			t.Errorf("document missing %q", part)
		}
	}
}

func TestRenderLoginRunsNoLoaders(t *testing.T) {
	f := newFixture(t)
	page, err := f.pipeline().Render(context.Background(), "/login")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if page.Report.Awaited != 0 || f.homeLoads.Load() != 0 {
		t.Errorf("login should not prefetch: awaited=%d loads=%d", page.Report.Awaited, f.homeLoads.Load())
	}
	if diff := cmp.Diff(store.State{"list": []any{}}, page.Result.State); diff != "" {
		t.Errorf("state (-want +got):\n%s", diff)
	}
	if !strings.Contains(page.HTML, `<button data-hid="h1" data-on-click="true">Log in</button>`) {
		t.Errorf("login button missing hydration markers:\n%s", page.HTML)
	}
}

func TestRenderMissingNeverRenders(t *testing.T) {
	f := newFixture(t)
	page, err := f.pipeline().Render(context.Background(), "/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if page != nil || f.rendered.Load() != 0 || f.homeLoads.Load() != 0 {
		t.Error("nothing may run for an unmatched path")
	}
}

func TestRenderFailingLoaderProducesNoDocument(t *testing.T) {
	f := newFixture(t)
	f.failHome = true

	page, err := f.pipeline().Render(context.Background(), "/")
	var pe *prefetch.Error
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *prefetch.Error", err)
	}
	if page != nil || f.rendered.Load() != 0 {
		t.Error("no component may render after a failed prefetch")
	}
}

func TestRenderUnserializableState(t *testing.T) {
	f := newFixture(t)
	p := NewPipeline(Options{
		Tree:         f.tree,
		Reducer:      reducer,
		InitialState: func() store.State { return store.State{"cb": func() {}} },
	})
	_, err := p.Render(context.Background(), "/login")
	var se *store.SerializationError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *store.SerializationError", err)
	}
}

func TestStyleOrderIndependentOfLoaderTiming(t *testing.T) {
	slowStyle := func(name string, delay time.Duration) (router.Component, router.LoadFunc) {
		c := view.WithStyle(func(p router.Props) *vdom.VNode { return vdom.Div(p.Outlet()) }, "."+name+"{}")
		l := func(ctx context.Context, s *store.Store, _ map[string]string) error {
			time.Sleep(delay)
			s.Dispatch(store.Action{Type: "set", Payload: [2]any{name, true}})
			return nil
		}
		return c, l
	}
	outerC, outerL := slowStyle("outer", 40*time.Millisecond)
	innerC, innerL := slowStyle("inner", 0)

	tree := router.MustTree([]*router.RouteNode{{
		Path: "/", Component: outerC, LoadData: outerL,
		Routes: []*router.RouteNode{{Path: "/x", Exact: true, Component: innerC, LoadData: innerL}},
	}})
	page, err := NewPipeline(Options{Tree: tree, Reducer: reducer}).Render(context.Background(), "/x")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{".outer{}", ".inner{}"}, page.Result.Styles); diff != "" {
		t.Errorf("styles (-want +got):\n%s", diff)
	}
}

func TestAssemblerIsDeterministic(t *testing.T) {
	f := newFixture(t)
	a := NewAssembler(f.tree)
	seed := store.State{"list": []any{map[string]any{"id": 1.0, "title": "x"}}}

	r1, err := a.RenderDocument(store.New(reducer, seed, nil), "/")
	if err != nil {
		t.Fatal(err)
	}
	r2, err := a.RenderDocument(store.New(reducer, seed, nil), "/")
	if err != nil {
		t.Fatal(err)
	}
	if r1.Markup != r2.Markup {
		t.Errorf("markup differs:\n%s\n%s", r1.Markup, r2.Markup)
	}
	if diffs := vdom.Compare(r1.Tree, r2.Tree); len(diffs) != 0 {
		t.Errorf("trees differ: %v", diffs)
	}

	if _, err := a.RenderDocument(store.New(reducer, seed, nil), "/nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
