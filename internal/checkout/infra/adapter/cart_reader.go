package adapter

import (
	"context"
	"errors"
	"fmt"

	cartapp "github.com/dwikikusuma/epicerie/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/epicerie/internal/checkout/app"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) ReadCart(ctx context.Context, userID string) (checkoutapp.Cart, error) {
	cart, err := r.svc.ValidateForCheckout(ctx, userID)
	switch {
	case errors.Is(err, cartapp.ErrEmptyCart):
		return checkoutapp.Cart{}, checkoutapp.ErrEmptyCart
	case errors.Is(err, cartapp.ErrMissingStore), errors.Is(err, cartapp.ErrMixedStores), errors.Is(err, cartapp.ErrCorruptCart):
		return checkoutapp.Cart{}, fmt.Errorf("%w: %v", checkoutapp.ErrInvalidCart, err)
	case errors.Is(err, cartapp.ErrInvalidInput):
		return checkoutapp.Cart{}, checkoutapp.ErrInvalidInput
	case err != nil:
		return checkoutapp.Cart{}, err
	}

	items := make([]checkoutapp.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, checkoutapp.CartItem{
			ProductID:    it.ProductID,
			UnitID:       it.UnitID,
			Quantity:     it.Quantity,
			PricePerUnit: it.PricePerUnit,
		})
	}
	return checkoutapp.Cart{UserID: cart.UserID, EpicerieID: cart.EpicerieID, Items: items}, nil
}

func (r *CartServiceReader) ClearCart(ctx context.Context, userID string) error {
	return r.svc.ClearCart(ctx, userID)
}
