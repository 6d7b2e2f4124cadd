package app

import (
	"context"
	"time"

	"github.com/dwikikusuma/epicerie/internal/catalog/domain"
)

type ProductRepo interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	ListByEpicerie(ctx context.Context, epicerieID int64, query string, limit int, cursor string) ([]domain.Product, string, error)
}

// Cache is a short-lived read cache; entries expire on their own.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
