package app

import (
	"context"

	"github.com/dwikikusuma/epicerie/pkg/kv"
)

// SlotStore is the part of kv.Store the cart needs.
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	Update(ctx context.Context, key string, fn kv.UpdateFunc) error
}
