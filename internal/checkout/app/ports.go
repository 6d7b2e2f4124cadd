package app

import (
	"context"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/dwikikusuma/epicerie/internal/catalog/domain"
	"github.com/dwikikusuma/epicerie/internal/checkout/domain"
)

type CartItem struct {
	ProductID    string
	UnitID       *string
	Quantity     int
	PricePerUnit decimal.Decimal
}

type Cart struct {
	UserID     string
	EpicerieID int64
	Items      []CartItem
}

type CartReader interface {
	ReadCart(ctx context.Context, userID string) (Cart, error)
	ClearCart(ctx context.Context, userID string) error
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (catalogdomain.Product, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, draft domain.OrderDraft) (domain.Placement, error)
}
