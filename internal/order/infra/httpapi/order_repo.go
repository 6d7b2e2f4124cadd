package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/epicerie/internal/order/domain"
)

type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

type OrderRepo struct {
	api Doer
}

func NewOrderRepo(api Doer) *OrderRepo {
	return &OrderRepo{api: api}
}

type submitRequest struct {
	IdempotencyKey  string             `json:"idempotencyKey"`
	EpicerieID      int64              `json:"epicerieId"`
	Items           []domain.OrderItem `json:"items"`
	SubTotal        decimal.Decimal    `json:"subTotal"`
	DeliveryFee     decimal.Decimal    `json:"deliveryFee"`
	Total           decimal.Decimal    `json:"total"`
	DeliveryAddress string             `json:"deliveryAddress,omitempty"`
	Note            string             `json:"note,omitempty"`
}

type submitResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *OrderRepo) Submit(ctx context.Context, order domain.Order) (domain.Order, error) {
	for i, item := range order.OrderItems {
		expected := item.UnitAmount.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if !item.LineTotalAmount.Equal(expected) {
			return domain.Order{}, fmt.Errorf("item %d: line total mismatch", i)
		}
	}

	var resp submitResponse
	err := r.api.Do(ctx, http.MethodPost, "orders", submitRequest{
		IdempotencyKey:  uuid.NewString(),
		EpicerieID:      order.EpicerieID,
		Items:           order.OrderItems,
		SubTotal:        order.SubTotalAmount,
		DeliveryFee:     order.DeliveryAmount,
		Total:           order.TotalAmount,
		DeliveryAddress: order.DeliveryAddress,
		Note:            order.Note,
	}, &resp)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	created := order
	created.ID = resp.ID
	if resp.Status != "" {
		created.Status = resp.Status
	}
	created.CreatedAt = resp.CreatedAt
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	return created, nil
}
