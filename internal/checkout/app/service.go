package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	catalogdomain "github.com/dwikikusuma/epicerie/internal/catalog/domain"
	"github.com/dwikikusuma/epicerie/internal/checkout/domain"
	"github.com/dwikikusuma/epicerie/internal/pricing"
	"github.com/dwikikusuma/epicerie/pkg/telemetry"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidCart      = errors.New("cart cannot be checked out")
	ErrUnknownProduct   = errors.New("product no longer exists")
	ErrUnavailableItems = errors.New("some items are unavailable")
)

type Service struct {
	Cart    CartReader
	Catalog CatalogReader
	Orders  OrderPlacer
	log     *slog.Logger

	maxConcurrent int
}

func NewService(cart CartReader, catalog CatalogReader, orders OrderPlacer, maxConcurrent int, log *slog.Logger) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		Orders:        orders,
		log:           log.With("component", "checkout"),
		maxConcurrent: maxConcurrent,
	}
}

// Quote prices every cart line against the current catalog. Lines whose
// unit is gone, out of stock or unavailable are kept with Available false.
func (s *Service) Quote(ctx context.Context, userID string) (domain.Quote, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Quote{}, ErrInvalidInput
	}

	cart, err := s.Cart.ReadCart(ctx, userID)
	if err != nil {
		return domain.Quote{}, err
	}
	if len(cart.Items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(cart.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range cart.Items {
		g.Go(func() error {
			it := cart.Items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("%w: quantity must be greater than zero: %d", ErrInvalidCart, it.Quantity)
			}

			product, err := s.Catalog.GetProduct(gctx, it.ProductID)
			if errors.Is(err, ErrUnknownProduct) {
				lines[idx] = missingLine(it)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}

			lines[idx] = priceLine(product, it)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	subTotal := decimal.Zero
	for _, line := range lines {
		subTotal = subTotal.Add(line.LineTotal)
	}

	return domain.Quote{
		UserID:     userID,
		EpicerieID: cart.EpicerieID,
		Lines:      lines,
		SubTotal:   subTotal,
	}, nil
}

// PlaceOrder quotes the cart, refuses it when a line is unavailable, submits
// the order at current prices and then empties the cart.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req domain.PlaceOrderRequest) (domain.Placement, error) {
	ctx, span := telemetry.Tracer("checkout").Start(ctx, "checkout.PlaceOrder")
	defer span.End()

	if req.DeliveryFee.IsNegative() {
		return domain.Placement{}, fmt.Errorf("%w: delivery fee cannot be negative", ErrInvalidInput)
	}

	q, err := s.Quote(ctx, userID)
	if err != nil {
		return domain.Placement{}, err
	}
	if missing := q.Unavailable(); len(missing) > 0 {
		ids := make([]string, 0, len(missing))
		for _, l := range missing {
			ids = append(ids, l.ProductID)
		}
		return domain.Placement{}, fmt.Errorf("%w: %s", ErrUnavailableItems, strings.Join(ids, ", "))
	}

	span.SetAttributes(attribute.Int("checkout.lines", len(q.Lines)))
	placed, err := s.Orders.PlaceOrder(ctx, domain.OrderDraft{
		UserID:          userID,
		EpicerieID:      q.EpicerieID,
		Lines:           q.Lines,
		DeliveryFee:     req.DeliveryFee,
		DeliveryAddress: req.DeliveryAddress,
		Note:            req.Note,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Placement{}, fmt.Errorf("place order: %w", err)
	}

	if err := s.Cart.ClearCart(ctx, userID); err != nil {
		s.log.Warn("order placed but cart not cleared",
			slog.String("user_id", userID),
			slog.String("order_id", placed.OrderID),
			slog.Any("err", err),
		)
	}

	s.log.Info("order placed",
		slog.String("user_id", userID),
		slog.String("order_id", placed.OrderID),
		slog.String("total", placed.Total.String()),
	)
	return placed, nil
}

func priceLine(p catalogdomain.Product, it CartItem) domain.QuoteLine {
	var unitID string
	if it.UnitID != nil {
		unitID = *it.UnitID
	}

	line := missingLine(it)
	line.Name = p.Nom

	unit, ok := p.Unit(unitID)
	if !ok {
		return line
	}

	line.UnitLabel = unit.Label
	line.UnitPrice = unit.Prix
	line.LineTotal = unit.Prix.Mul(decimal.NewFromInt(int64(it.Quantity)))
	line.Available = pricing.CanOrderPacks(unit, it.Quantity)
	line.PriceChanged = !unit.Prix.Equal(it.PricePerUnit)
	return line
}

// missingLine keeps the cart's own price for a line the catalog no longer
// offers.
func missingLine(it CartItem) domain.QuoteLine {
	return domain.QuoteLine{
		ProductID:     it.ProductID,
		UnitID:        it.UnitID,
		Quantity:      it.Quantity,
		UnitPrice:     it.PricePerUnit,
		CartUnitPrice: it.PricePerUnit,
		LineTotal:     it.PricePerUnit.Mul(decimal.NewFromInt(int64(it.Quantity))),
	}
}
