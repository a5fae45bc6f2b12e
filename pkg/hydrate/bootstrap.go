package hydrate

import (
	"log/slog"

	"github.com/vango-dev/isomorph/pkg/api"
	"github.com/vango-dev/isomorph/pkg/middleware"
	"github.com/vango-dev/isomorph/pkg/store"
)

// Options configures the client-side store.
type Options struct {
	Reducer store.Reducer

	// Default returns the static default state used when the document
	// carries no usable state.
	Default func() store.State

	// Client is the browser-side data-access client (page origin + /api).
	Client api.Client

	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default().With("component", "hydrate")
}

// Bootstrap builds the client store from the serialized snapshot. No loader
// runs. Missing or malformed input falls back to the default state and
// reports false.
func Bootstrap(raw []byte, opts Options) (*store.Store, bool) {
	if len(raw) > 0 {
		state, err := store.Unmarshal(raw)
		if err == nil {
			return store.New(opts.Reducer, state, opts.Client), true
		}
		opts.logger().Warn("serialized state unusable, using default state",
			"code", "E041", "error", err)
	} else {
		opts.logger().Warn("no serialized state, using default state", "code", "E041")
	}

	middleware.RecordBootstrapFallback()
	var def store.State
	if opts.Default != nil {
		def = opts.Default()
	}
	return store.New(opts.Reducer, def, opts.Client), false
}
