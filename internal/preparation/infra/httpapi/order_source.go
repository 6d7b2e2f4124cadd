package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dwikikusuma/epicerie/internal/preparation/app"
	"github.com/dwikikusuma/epicerie/internal/preparation/domain"
	"github.com/dwikikusuma/epicerie/pkg/remote"
)

type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

type OrderSource struct {
	api Doer
}

func NewOrderSource(api Doer) *OrderSource {
	return &OrderSource{api: api}
}

func (s *OrderSource) FetchOrder(ctx context.Context, orderID string) (domain.Order, error) {
	var o domain.Order
	err := s.api.Do(ctx, http.MethodGet, "epicier/orders/"+url.PathEscape(orderID), nil, &o)
	if remote.IsStatus(err, http.StatusNotFound) {
		return domain.Order{}, fmt.Errorf("order %s: %w", orderID, app.ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

type itemUpdate struct {
	Status         domain.ItemStatus `json:"status"`
	QuantityActual float64           `json:"quantityActual"`
}

func (s *OrderSource) PushItem(ctx context.Context, orderID string, item domain.OrderItem) error {
	path := fmt.Sprintf("epicier/orders/%s/items/%s", url.PathEscape(orderID), url.PathEscape(item.ID))
	return s.api.Do(ctx, http.MethodPatch, path, itemUpdate{
		Status:         item.Status,
		QuantityActual: item.QuantityActual,
	}, nil)
}

func (s *OrderSource) MarkReady(ctx context.Context, orderID string) error {
	return s.api.Do(ctx, http.MethodPost, "epicier/orders/"+url.PathEscape(orderID)+"/ready", nil, nil)
}
