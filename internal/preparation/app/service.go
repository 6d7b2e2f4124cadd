package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/epicerie/internal/preparation/domain"
	"github.com/dwikikusuma/epicerie/pkg/kv"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("preparation not found")
)

type Service struct {
	store  Store
	source OrderSource
	log    *slog.Logger
	now    func() time.Time

	maxConcurrent int
}

func NewService(store Store, source OrderSource, maxConcurrent int, log *slog.Logger) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:         store,
		source:        source,
		log:           log.With("component", "preparation"),
		now:           time.Now,
		maxConcurrent: maxConcurrent,
	}
}

func orderKey(orderID string) string {
	return "preparation:order:" + orderID
}

// Start opens the preparation of an order, fetching it from the API the
// first time. Starting an order twice returns the stored state.
func (s *Service) Start(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, ErrInvalidInput
	}

	if o, err := s.Get(ctx, orderID); err == nil {
		return o, nil
	} else if !errors.Is(err, ErrNotFound) {
		return domain.Order{}, err
	}

	fetched, err := s.source.FetchOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	fetched.ID = orderID
	normalize(&fetched, s.now())

	var started domain.Order
	err = s.store.Update(ctx, orderKey(orderID), func(cur []byte) ([]byte, error) {
		if cur != nil {
			// Another caller started it first.
			if err := json.Unmarshal(cur, &started); err != nil {
				return nil, err
			}
			return cur, nil
		}
		started = fetched
		return json.Marshal(fetched)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("store order %s: %w", orderID, err)
	}

	s.log.Info("preparation started", slog.String("order_id", orderID), slog.Int("items", len(started.Items)))
	return started, nil
}

func normalize(o *domain.Order, now time.Time) {
	if o.Status == "" {
		o.Status = domain.OrderInPreparation
	}
	if o.StartedAt.IsZero() {
		o.StartedAt = now
	}
	for i := range o.Items {
		it := &o.Items[i]
		if !it.Status.Valid() {
			it.Status = domain.StatusPending
		}
		if it.Status == domain.StatusPending && it.QuantityActual == 0 {
			it.QuantityActual = it.QuantityCommanded
		}
	}
}

func (s *Service) Get(ctx context.Context, orderID string) (domain.Order, error) {
	raw, err := s.store.Get(ctx, orderKey(orderID))
	if errors.Is(err, kv.ErrNotFound) {
		return domain.Order{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return domain.Order{}, err
	}
	var o domain.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return domain.Order{}, fmt.Errorf("decode order %s: %w", orderID, err)
	}
	return o, nil
}

func (s *Service) ScanBarcode(ctx context.Context, orderID, barcode string) (domain.OrderItem, error) {
	if strings.TrimSpace(barcode) == "" {
		return domain.OrderItem{}, ErrInvalidInput
	}
	var item domain.OrderItem
	err := s.mutate(ctx, orderID, func(o *domain.Order) error {
		var err error
		item, err = o.ScanBarcode(barcode)
		return err
	})
	if err != nil {
		return domain.OrderItem{}, err
	}
	s.log.Info("item scanned", slog.String("order_id", orderID), slog.String("item_id", item.ID))
	return item, nil
}

func (s *Service) ModifyQuantity(ctx context.Context, orderID, itemID string, actual float64) (domain.OrderItem, error) {
	return s.applyItem(ctx, orderID, itemID, "quantity modified", func(it *domain.OrderItem) error {
		return it.ModifyQuantity(actual)
	})
}

func (s *Service) CompleteItem(ctx context.Context, orderID, itemID string) (domain.OrderItem, error) {
	return s.applyItem(ctx, orderID, itemID, "item completed", (*domain.OrderItem).Complete)
}

func (s *Service) MarkUnavailable(ctx context.Context, orderID, itemID string) (domain.OrderItem, error) {
	return s.applyItem(ctx, orderID, itemID, "item unavailable", (*domain.OrderItem).MarkUnavailable)
}

func (s *Service) Progress(ctx context.Context, orderID string) (domain.Progress, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return domain.Progress{}, err
	}
	return o.Progress(), nil
}

// Finish freezes the order, pushes the frozen item outcomes to the API,
// marks the order ready there and then closes it locally. Without force, open
// items yield *domain.IncompleteError and nothing is sent. When sending fails
// the order is reopened.
func (s *Service) Finish(ctx context.Context, orderID string, force bool) (domain.Order, error) {
	var frozen domain.Order
	err := s.mutate(ctx, orderID, func(o *domain.Order) error {
		if err := o.BeginFinish(force); err != nil {
			return err
		}
		frozen = *o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.publish(ctx, frozen); err != nil {
		s.reopen(ctx, orderID)
		return domain.Order{}, err
	}

	var finished domain.Order
	err = s.mutate(ctx, orderID, func(o *domain.Order) error {
		if err := o.CompleteFinish(s.now()); err != nil {
			return err
		}
		finished = *o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	p := finished.Progress()
	s.log.Info("preparation finished",
		slog.String("order_id", orderID),
		slog.Bool("forced", force),
		slog.Int("pending", p.Pending),
		slog.Int("unavailable", p.Unavailable),
	)
	return finished, nil
}

func (s *Service) publish(ctx context.Context, o domain.Order) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for _, it := range o.Items {
		g.Go(func() error {
			if err := s.source.PushItem(gctx, o.ID, it); err != nil {
				return fmt.Errorf("push item %s: %w", it.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := s.source.MarkReady(ctx, o.ID); err != nil {
		return fmt.Errorf("mark order %s ready: %w", o.ID, err)
	}
	return nil
}

// reopen lets the grocer correct items and retry after a failed finish.
func (s *Service) reopen(ctx context.Context, orderID string) {
	err := s.mutate(context.WithoutCancel(ctx), orderID, func(o *domain.Order) error {
		o.AbortFinish()
		return nil
	})
	if err != nil {
		s.log.Warn("reopen after failed finish", slog.String("order_id", orderID), slog.Any("error", err))
	}
}

func (s *Service) applyItem(ctx context.Context, orderID, itemID, event string, action func(*domain.OrderItem) error) (domain.OrderItem, error) {
	if strings.TrimSpace(itemID) == "" {
		return domain.OrderItem{}, ErrInvalidInput
	}
	var item domain.OrderItem
	err := s.mutate(ctx, orderID, func(o *domain.Order) error {
		var err error
		item, err = o.Apply(itemID, action)
		return err
	})
	if err != nil {
		return domain.OrderItem{}, err
	}
	s.log.Info(event, slog.String("order_id", orderID), slog.String("item_id", item.ID), slog.String("status", string(item.Status)))
	return item, nil
}

// mutate applies fn to the stored order atomically. When fn fails nothing is
// written.
func (s *Service) mutate(ctx context.Context, orderID string, fn func(*domain.Order) error) error {
	if strings.TrimSpace(orderID) == "" {
		return ErrInvalidInput
	}
	return s.store.Update(ctx, orderKey(orderID), func(cur []byte) ([]byte, error) {
		if cur == nil {
			return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		var o domain.Order
		if err := json.Unmarshal(cur, &o); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", orderID, err)
		}
		if err := fn(&o); err != nil {
			return nil, err
		}
		return json.Marshal(o)
	})
}
