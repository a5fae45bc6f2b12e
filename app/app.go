// Package app is the demo application: a header shell with a post list on
// the home page, a post detail page and a login page.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/store"
	"github.com/vango-dev/isomorph/pkg/vdom"
	"github.com/vango-dev/isomorph/pkg/view"
)

const (
	appStyles = `.header{display:flex;gap:1rem;padding:1rem;border-bottom:1px solid #ddd}
.header a{color:#333;text-decoration:none}`

	loginStyles = `.title{color:#c0392b}`
)

// Routes returns a fresh route table. Each call builds new nodes so
// independent trees never share a *RouteNode.
func Routes() []*router.RouteNode {
	return []*router.RouteNode{{
		Path:      "/",
		Key:       "app",
		Component: view.WithStyle(Shell, appStyles),
		Routes: []*router.RouteNode{
			{
				Path:      "/",
				Exact:     true,
				Key:       "home",
				Component: Home,
				LoadData:  loadHome,
				OnMount:   mountHome,
			},
			{
				Path:      "/login",
				Exact:     true,
				Key:       "login",
				Component: view.WithStyle(Login, loginStyles),
			},
			{
				Path:      "/posts/:id",
				Exact:     true,
				Key:       "post",
				Component: PostPage,
				LoadData:  loadPost,
				OnMount:   loadPost,
			},
		},
	}}
}

// Shell is the root layout: the header followed by the matched page.
func Shell(p router.Props) *vdom.VNode {
	return vdom.Div(
		Header(),
		p.Outlet(),
	)
}

// Header links the two pages.
func Header() *vdom.VNode {
	return vdom.Header(vdom.Class("header"),
		vdom.A(vdom.Href("/"), vdom.Text("Home")),
		vdom.A(vdom.Href("/login"), vdom.Text("Login")),
	)
}

// Home lists the posts in the store.
func Home(p router.Props) *vdom.VNode {
	return vdom.Div(
		vdom.H1(vdom.Text("Home!!")),
		vdom.Ul(vdom.Range(Posts(p.State()), func(post Post, _ int) *vdom.VNode {
			return vdom.Li(vdom.Key(post.ID), vdom.Text(post.Title))
		})),
	)
}

// Login renders the login page.
func Login(p router.Props) *vdom.VNode {
	return vdom.Div(
		vdom.H1(vdom.Class("title"), vdom.Text("login!!")),
		vdom.Button(vdom.OnClick(func() {
			slog.Default().With("component", "app").Info("login")
		}), vdom.Text("Log in")),
	)
}

// PostPage shows a single post.
func PostPage(p router.Props) *vdom.VNode {
	var params postParams
	if err := router.Decode(p.Params, &params); err != nil {
		return vdom.P(vdom.Text("Invalid post id"))
	}
	post, ok := CurrentPost(p.State(), params.ID)
	if !ok {
		return vdom.P(vdom.Text("Loading..."))
	}
	return vdom.Article(
		vdom.H1(vdom.Text(post.Title)),
		vdom.P(vdom.Text(post.Body)),
		vdom.A(vdom.Href("/"), vdom.Text("Back")),
	)
}

type postParams struct {
	ID int `param:"id"`
}

// loadPost fetches the post unless the store already holds it, so the
// client mount hook is a no-op after a server render.
func loadPost(ctx context.Context, s *store.Store, params map[string]string) error {
	var pp postParams
	if err := router.Decode(params, &pp); err != nil {
		return fmt.Errorf("app: post params: %w", err)
	}
	if _, ok := CurrentPost(s.State(), pp.ID); ok {
		return nil
	}
	return s.Run(ctx, GetPost(pp.ID))
}

func loadHome(ctx context.Context, s *store.Store, _ map[string]string) error {
	return s.Run(ctx, GetList)
}

// mountHome fetches on the client only when the server did not.
func mountHome(ctx context.Context, s *store.Store, _ map[string]string) error {
	if len(Posts(s.State())) > 0 {
		return nil
	}
	return s.Run(ctx, GetList)
}
