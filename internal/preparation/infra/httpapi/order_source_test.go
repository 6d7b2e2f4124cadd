package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/epicerie/internal/preparation/app"
	"github.com/dwikikusuma/epicerie/internal/preparation/domain"
	"github.com/dwikikusuma/epicerie/pkg/logger"
	"github.com/dwikikusuma/epicerie/pkg/remote"
)

func TestOrderSource(t *testing.T) {
	var patched itemUpdate
	var readyCalled bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /epicier/orders/o1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"o1","epicerieId":2,"items":[{"id":"i1","productId":"p1","quantityCommanded":3,"barcode":"X"}]}`))
	})
	mux.HandleFunc("GET /epicier/orders/o2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("PATCH /epicier/orders/o1/items/i1", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /epicier/orders/o1/ready", func(w http.ResponseWriter, r *http.Request) {
		readyCalled = true
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewOrderSource(remote.New(srv.URL, time.Second, remote.WithLogger(logger.Discard())))
	ctx := context.Background()

	o, err := src.FetchOrder(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 3.0, o.Items[0].QuantityCommanded)

	_, err = src.FetchOrder(ctx, "o2")
	assert.ErrorIs(t, err, app.ErrNotFound)

	require.NoError(t, src.PushItem(ctx, "o1", domain.OrderItem{ID: "i1", Status: domain.StatusModified, QuantityActual: 2.5}))
	assert.Equal(t, domain.StatusModified, patched.Status)
	assert.Equal(t, 2.5, patched.QuantityActual)

	require.NoError(t, src.MarkReady(ctx, "o1"))
	assert.True(t, readyCalled)
}
