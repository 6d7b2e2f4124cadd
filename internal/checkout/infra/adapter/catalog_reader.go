package adapter

import (
	"context"
	"errors"

	catalogapp "github.com/dwikikusuma/epicerie/internal/catalog/app"
	"github.com/dwikikusuma/epicerie/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/epicerie/internal/checkout/app"
)

type CatalogServiceReader struct {
	svc *catalogapp.Service
}

func NewCatalogServiceReader(svc *catalogapp.Service) *CatalogServiceReader {
	return &CatalogServiceReader{svc: svc}
}

// GetProduct bypasses the catalog cache so checkout sees current price and
// stock.
func (r *CatalogServiceReader) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	p, err := r.svc.GetProductFresh(ctx, productID)
	if errors.Is(err, catalogapp.ErrNotFound) {
		return domain.Product{}, checkoutapp.ErrUnknownProduct
	}
	return p, err
}
