package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/epicerie/pkg/logger"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func TestClientDo(t *testing.T) {
	ctx := context.Background()

	t.Run("sends bearer token and decodes json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "/api/orders/1", r.URL.Path)
			assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

			var in map[string]int
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, 2, in["n"])

			_ = json.NewEncoder(w).Encode(map[string]string{"id": "1"})
		}))
		defer srv.Close()

		c := New(srv.URL+"/api/", time.Second, WithTokenSource(staticToken("tok")), WithLogger(logger.Discard()))
		var out struct{ ID string }
		require.NoError(t, c.Do(ctx, http.MethodPost, "/orders/1", map[string]int{"n": 2}, &out))
		assert.Equal(t, "1", out.ID)
	})

	t.Run("api error message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"stock insuffisant"}`))
		}))
		defer srv.Close()

		c := New(srv.URL, time.Second, WithLogger(logger.Discard()))
		err := c.Do(ctx, http.MethodGet, "x", nil, nil)
		require.Error(t, err)
		assert.True(t, IsStatus(err, http.StatusConflict))
		assert.Contains(t, err.Error(), "stock insuffisant")
	})

	t.Run("401 invalidates the session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		inv := &countingInvalidator{}
		c := New(srv.URL, time.Second, WithSessionInvalidator(inv), WithLogger(logger.Discard()))
		err := c.Do(ctx, http.MethodGet, "me", nil, nil)
		assert.True(t, IsStatus(err, http.StatusUnauthorized))
		assert.Equal(t, 1, inv.calls)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		c := New(srv.URL, 20*time.Millisecond, WithLogger(logger.Discard()))
		err := c.Do(ctx, http.MethodGet, "slow", nil, nil)
		require.Error(t, err)
		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr))
	})
}
