package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/epicerie/internal/catalog/app"
	"github.com/dwikikusuma/epicerie/pkg/logger"
	"github.com/dwikikusuma/epicerie/pkg/remote"
)

func TestProductRepo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products/p1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"p1","nom":"Farine","epicerieId":3,"prix":"1.20","stock":12,
			"units":[{"id":"u1","quantity":1,"label":"1kg","prix":1.2,"stock":12,"isAvailable":true,"unitType":"weight"}]}`))
	})
	mux.HandleFunc("/products/nope", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"introuvable"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/epiceries/3/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "farine", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"products":[{"id":"p1"}],"nextCursor":"p1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	repo := NewProductRepo(remote.New(srv.URL, time.Second, remote.WithLogger(logger.Discard())))
	ctx := context.Background()

	p, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Farine", p.Nom)
	require.Len(t, p.Units, 1)
	assert.True(t, p.Units[0].IsAvailable)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, app.ErrNotFound)

	products, next, err := repo.ListByEpicerie(ctx, 3, "farine", 2, "")
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Empty(t, next, "short page has no next cursor")
}
