package app

import (
	"context"

	"github.com/dwikikusuma/epicerie/internal/order/domain"
)

type OrderRepo interface {
	Submit(ctx context.Context, order domain.Order) (domain.Order, error)
}
