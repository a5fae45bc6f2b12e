package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts":
			require.Equal(t, "application/json", r.Header.Get("Accept"))
			require.Equal(t, "yes", r.Header.Get("X-Test"))
			w.Write([]byte(`[{"id":1,"title":"a"}]`))
		case "/broken":
			w.Write([]byte(`{not json`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", WithHeader("X-Test", "yes"))
	require.Equal(t, srv.URL, c.BaseURL())

	body, err := c.Get(context.Background(), "/posts")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":1,"title":"a"}]`, string(body))

	_, err = c.Get(context.Background(), "broken")
	require.Error(t, err)

	_, err = c.Get(context.Background(), "/missing")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestHTTPClientHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHTTPClient(srv.URL).Get(ctx, "/slow")
	require.ErrorIs(t, err, context.Canceled)
}

func TestHTTPClientRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fits":
			w.Write([]byte(`[1,2,3]`))
		default:
			w.Write([]byte(`[1,2,3,4,5]`))
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, WithMaxBody(7))

	body, err := c.Get(context.Background(), "/fits")
	require.NoError(t, err)
	require.JSONEq(t, `[1,2,3]`, string(body))

	_, err = c.Get(context.Background(), "/big")
	require.ErrorIs(t, err, ErrTooLarge)
}
