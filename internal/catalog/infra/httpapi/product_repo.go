package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dwikikusuma/epicerie/internal/catalog/app"
	"github.com/dwikikusuma/epicerie/internal/catalog/domain"
	"github.com/dwikikusuma/epicerie/pkg/remote"
)

// Doer is the remote API capability the repo needs.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

type ProductRepo struct {
	api Doer
}

func NewProductRepo(api Doer) *ProductRepo {
	return &ProductRepo{api: api}
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.api.Do(ctx, http.MethodGet, "products/"+url.PathEscape(id), nil, &p)
	if remote.IsStatus(err, http.StatusNotFound) {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, app.ErrNotFound)
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

type listResponse struct {
	Products   []domain.Product `json:"products"`
	NextCursor string           `json:"nextCursor"`
}

func (r *ProductRepo) ListByEpicerie(ctx context.Context, epicerieID int64, query string, limit int, cursor string) ([]domain.Product, string, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var resp listResponse
	path := fmt.Sprintf("epiceries/%d/products?%s", epicerieID, q.Encode())
	err := r.api.Do(ctx, http.MethodGet, path, nil, &resp)
	if remote.IsStatus(err, http.StatusNotFound) {
		return nil, "", fmt.Errorf("epicerie %d: %w", epicerieID, app.ErrNotFound)
	}
	if err != nil {
		return nil, "", err
	}

	if len(resp.Products) < limit {
		resp.NextCursor = ""
	}
	return resp.Products, resp.NextCursor, nil
}
