package app

import (
	"context"

	"github.com/dwikikusuma/epicerie/internal/preparation/domain"
	"github.com/dwikikusuma/epicerie/pkg/kv"
)

// OrderSource is the marketplace API as seen by the grocer's preparation
// screen.
type OrderSource interface {
	FetchOrder(ctx context.Context, orderID string) (domain.Order, error)
	PushItem(ctx context.Context, orderID string, item domain.OrderItem) error
	MarkReady(ctx context.Context, orderID string) error
}

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, fn kv.UpdateFunc) error
}
