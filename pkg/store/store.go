// Package store holds per-request (server) or per-page (client) application
// state.
//
// State changes only through Dispatch, which runs the reducer under a mutex so
// concurrent loaders can dispatch safely. I/O lives in effects, which receive
// the injected api.Client. There is no process-wide store: callers create one
// with New for every request and pass it explicitly.
package store

import (
	"context"
	"sync"

	"github.com/vango-dev/isomorph/pkg/api"
)

// State is the application state: named slices of arbitrary data.
type State map[string]any

// Action describes a state change. Actions never perform I/O.
type Action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Reducer computes the next state from the current one. It receives a
// shallow copy and may modify and return it.
type Reducer func(state State, action Action) State

// DispatchFunc sends an action to the store.
type DispatchFunc func(Action)

// GetStateFunc returns the current state.
type GetStateFunc func() State

// Effect performs I/O through the client and dispatches the results.
type Effect func(ctx context.Context, dispatch DispatchFunc, getState GetStateFunc, client api.Client) error

// Store is a mutex-guarded state container.
type Store struct {
	mu      sync.Mutex
	reducer Reducer
	state   State
	client  api.Client

	subs    map[int]func(State)
	nextSub int
}

// New creates a store seeded with initial. A nil reducer leaves state
// unchanged on every dispatch.
func New(reducer Reducer, initial State, client api.Client) *Store {
	if reducer == nil {
		reducer = func(s State, _ Action) State { return s }
	}
	if initial == nil {
		initial = State{}
	}
	return &Store{
		reducer: reducer,
		state:   initial.clone(),
		client:  client,
		subs:    make(map[int]func(State)),
	}
}

// Dispatch applies an action and notifies subscribers after the lock is released.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	next := s.reducer(s.state.clone(), a)
	if next == nil {
		next = State{}
	}
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next.clone())
	}
}

// Run executes an effect against this store.
func (s *Store) Run(ctx context.Context, e Effect) error {
	return e(ctx, s.Dispatch, s.State, s.client)
}

// State returns a shallow copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Snapshot returns a deep copy of the current state normalized through JSON,
// the exact value a client would rebuild from the serialized document.
func (s *Store) Snapshot() (State, error) {
	return Normalize(s.State())
}

// Client returns the injected data-access client.
func (s *Store) Client() api.Client {
	return s.client
}

// Subscribe registers fn to be called after every dispatch. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (st State) clone() State {
	out := make(State, len(st))
	for k, v := range st {
		out[k] = v
	}
	return out
}
