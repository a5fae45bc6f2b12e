package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vango-dev/isomorph/pkg/api"
	"github.com/vango-dev/isomorph/pkg/store"
)

const (
	// ActionChangeList replaces the post list. Payload: []Post.
	ActionChangeList = "change_list"

	// ActionChangePost stores the post being viewed. Payload: Post.
	ActionChangePost = "change_post"
)

// Post is one entry of the upstream /posts collection.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body,omitempty"`
}

// DefaultState returns the initial state of every store.
func DefaultState() store.State {
	return store.State{"list": []any{}}
}

// Reducer handles the demo actions and leaves the state unchanged for
// anything else.
func Reducer(s store.State, a store.Action) store.State {
	switch a.Type {
	case ActionChangeList:
		s["list"] = a.Payload
	case ActionChangePost:
		s["post"] = a.Payload
	}
	return s
}

// ChangeList builds the change_list action.
func ChangeList(list []Post) store.Action {
	return store.Action{Type: ActionChangeList, Payload: list}
}

// ChangePost builds the change_post action.
func ChangePost(p Post) store.Action {
	return store.Action{Type: ActionChangePost, Payload: p}
}

// GetList fetches /posts through the store's client and stores the result.
func GetList(ctx context.Context, dispatch store.DispatchFunc, _ store.GetStateFunc, client api.Client) error {
	body, err := client.Get(ctx, "/posts")
	if err != nil {
		return err
	}
	var list []Post
	if err := json.Unmarshal(body, &list); err != nil {
		return fmt.Errorf("app: decode posts: %w", err)
	}
	dispatch(ChangeList(list))
	return nil
}

// Posts returns the list currently held by s.
func Posts(s store.State) []Post {
	list, err := store.Select[[]Post](s, "list")
	if err != nil {
		return nil
	}
	return list
}

// GetPost returns an effect fetching /posts/{id}.
func GetPost(id int) store.Effect {
	return func(ctx context.Context, dispatch store.DispatchFunc, _ store.GetStateFunc, client api.Client) error {
		body, err := client.Get(ctx, fmt.Sprintf("/posts/%d", id))
		if err != nil {
			return err
		}
		var p Post
		if err := json.Unmarshal(body, &p); err != nil {
			return fmt.Errorf("app: decode post %d: %w", id, err)
		}
		dispatch(ChangePost(p))
		return nil
	}
}

// CurrentPost returns the post held by s, if it is the one with id.
func CurrentPost(s store.State, id int) (Post, bool) {
	p, err := store.Select[Post](s, "post")
	if err != nil || p.ID != id || id == 0 {
		return Post{}, false
	}
	return p, true
}
