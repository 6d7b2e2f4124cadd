package domain

import (
	"github.com/shopspring/decimal"
)

// LineItem is one cart entry, identified by product and optional unit
// variant. A nil UnitID means legacy pricing.
type LineItem struct {
	ProductID    string          `json:"productId"`
	UnitID       *string         `json:"unitId,omitempty"`
	ProductNom   string          `json:"productNom,omitempty"`
	UnitLabel    string          `json:"unitLabel,omitempty"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	EpicerieID   *int64          `json:"epicerieId,omitempty"`
}

func (l LineItem) Matches(productID string, unitID *string) bool {
	if l.ProductID != productID {
		return false
	}
	if l.UnitID == nil || unitID == nil {
		return l.UnitID == nil && unitID == nil
	}
	return *l.UnitID == *unitID
}

// Recompute sets TotalPrice from PricePerUnit and Quantity.
func (l *LineItem) Recompute() {
	l.TotalPrice = l.PricePerUnit.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	UserID     string
	EpicerieID int64
	Items      []LineItem
}

func (c Cart) Count() int {
	return Count(c.Items)
}

func (c Cart) Total() decimal.Decimal {
	return Total(c.Items)
}

func Count(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}
