package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/epicerie/internal/cart/domain"
	"github.com/dwikikusuma/epicerie/pkg/kv"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrCorruptCart  = errors.New("cart slot is corrupt")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrMissingStore = errors.New("cart item has no owning epicerie")
	ErrMixedStores  = errors.New("cart items belong to different epiceries")
)

type Service struct {
	store SlotStore
	log   *slog.Logger
}

func NewService(store SlotStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store: store,
		log:   log.With("component", "cart"),
	}
}

func slotKey(userID string) string {
	return "cart:" + userID
}

// Load reads the persisted cart. A missing slot is an empty cart; a slot
// that does not decode is reported as ErrCorruptCart.
func (s *Service) Load(ctx context.Context, userID string) ([]domain.LineItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	raw, err := s.store.Get(ctx, slotKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return []domain.LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return decode(raw)
}

// GetCart is Load for display: any failure is logged and yields an empty
// cart.
func (s *Service) GetCart(ctx context.Context, userID string) []domain.LineItem {
	items, err := s.Load(ctx, userID)
	if err != nil {
		s.log.Warn("get cart failed, using empty cart", slog.String("user_id", userID), slog.Any("err", err))
		return []domain.LineItem{}
	}
	return items
}

// SaveCart overwrites the slot with items.
func (s *Service) SaveCart(ctx context.Context, userID string, items []domain.LineItem) error {
	_, err := s.mutate(ctx, userID, func([]domain.LineItem) ([]domain.LineItem, error) {
		return items, nil
	})
	return err
}

// AddToCart merges item into the line with the same product and unit, or
// appends it.
func (s *Service) AddToCart(ctx context.Context, userID string, item domain.LineItem) ([]domain.LineItem, error) {
	if strings.TrimSpace(item.ProductID) == "" || item.Quantity < 1 || item.PricePerUnit.IsNegative() {
		return nil, ErrInvalidInput
	}

	return s.mutate(ctx, userID, func(items []domain.LineItem) ([]domain.LineItem, error) {
		for i := range items {
			if items[i].Matches(item.ProductID, item.UnitID) {
				items[i].Quantity += item.Quantity
				items[i].Recompute()
				return items, nil
			}
		}
		if item.TotalPrice.IsZero() {
			item.Recompute()
		}
		return append(items, item), nil
	})
}

// UpdateQuantity adds delta to the matching line. A resulting quantity of
// zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, delta int, unitID *string) ([]domain.LineItem, error) {
	return s.mutate(ctx, userID, func(items []domain.LineItem) ([]domain.LineItem, error) {
		out := items[:0]
		for _, it := range items {
			if it.Matches(productID, unitID) {
				it.Quantity += delta
				if it.Quantity <= 0 {
					continue
				}
				it.Recompute()
			}
			out = append(out, it)
		}
		return out, nil
	})
}

func (s *Service) RemoveFromCart(ctx context.Context, userID, productID string, unitID *string) ([]domain.LineItem, error) {
	return s.mutate(ctx, userID, func(items []domain.LineItem) ([]domain.LineItem, error) {
		out := items[:0]
		for _, it := range items {
			if !it.Matches(productID, unitID) {
				out = append(out, it)
			}
		}
		return out, nil
	})
}

// ClearCart deletes the slot. Called on logout and after an order is placed.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	if err := s.store.Delete(ctx, slotKey(userID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Count is the sum of quantities, read fresh from the slot.
func (s *Service) Count(ctx context.Context, userID string) int {
	return domain.Count(s.GetCart(ctx, userID))
}

// Total is the sum of line totals, read fresh from the slot.
func (s *Service) Total(ctx context.Context, userID string) decimal.Decimal {
	return domain.Total(s.GetCart(ctx, userID))
}

// ValidateForCheckout rejects carts that cannot be billed: empty, with an
// item missing its epicerie, or spanning several epiceries.
func (s *Service) ValidateForCheckout(ctx context.Context, userID string) (domain.Cart, error) {
	items, err := s.Load(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if len(items) == 0 {
		return domain.Cart{}, ErrEmptyCart
	}

	var epicerieID int64
	for _, it := range items {
		if it.EpicerieID == nil {
			return domain.Cart{}, fmt.Errorf("product %s: %w", it.ProductID, ErrMissingStore)
		}
		if epicerieID == 0 {
			epicerieID = *it.EpicerieID
			continue
		}
		if *it.EpicerieID != epicerieID {
			return domain.Cart{}, ErrMixedStores
		}
	}

	return domain.Cart{UserID: userID, EpicerieID: epicerieID, Items: items}, nil
}

// mutate runs fn as one atomic read-modify-write of the user's slot. A
// corrupt slot is replaced.
func (s *Service) mutate(ctx context.Context, userID string, fn func([]domain.LineItem) ([]domain.LineItem, error)) ([]domain.LineItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	var result []domain.LineItem
	err := s.store.Update(ctx, slotKey(userID), func(cur []byte) ([]byte, error) {
		items := []domain.LineItem{}
		if cur != nil {
			decoded, err := decode(cur)
			if err != nil {
				s.log.Warn("overwriting corrupt cart", slog.String("user_id", userID), slog.Any("err", err))
			} else {
				items = decoded
			}
		}

		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []domain.LineItem{}
		}
		result = next
		return json.Marshal(next)
	})
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}
	return result, nil
}

func decode(raw []byte) ([]domain.LineItem, error) {
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	for i := range items {
		// Older payloads used 0 for "unknown epicerie".
		if items[i].EpicerieID != nil && *items[i].EpicerieID <= 0 {
			items[i].EpicerieID = nil
		}
	}
	return items, nil
}
