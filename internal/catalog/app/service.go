package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dwikikusuma/epicerie/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo  ProductRepo
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService builds the catalog reader. A nil cache or a zero ttl disables
// caching.
func NewService(repo ProductRepo, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log.With("component", "catalog"),
	}
}

func cacheKey(id string) string {
	return "catalog:product:" + id
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, ErrInvalidInput
	}

	if p, ok := s.cached(ctx, id); ok {
		return p, nil
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	s.store(ctx, p)
	return p, nil
}

// GetProductFresh reads the product from the repository, skipping the cache,
// and refreshes the cached copy. Checkout prices against it.
func (s *Service) GetProductFresh(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, ErrInvalidInput
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	s.store(ctx, p)
	return p, nil
}

func (s *Service) ListProducts(ctx context.Context, epicerieID int64, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if epicerieID <= 0 {
		return nil, "", ErrInvalidInput
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.ListByEpicerie(ctx, epicerieID, strings.TrimSpace(query), limit, cursor)
}

func (s *Service) cached(ctx context.Context, id string) (domain.Product, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return domain.Product{}, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(id))
	if err != nil {
		return domain.Product{}, false
	}
	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		s.log.Debug("dropping undecodable cache entry", slog.String("product_id", id), slog.Any("err", err))
		return domain.Product{}, false
	}
	return p, true
}

func (s *Service) store(ctx context.Context, p domain.Product) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(p.ID), raw, s.ttl); err != nil {
		s.log.Warn("catalog cache write failed", slog.String("product_id", p.ID), slog.Any("err", err))
	}
}
