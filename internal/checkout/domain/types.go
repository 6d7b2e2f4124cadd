package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteLine is a cart line priced against the current catalog.
type QuoteLine struct {
	ProductID     string          `json:"productId"`
	UnitID        *string         `json:"unitId,omitempty"`
	Name          string          `json:"name"`
	UnitLabel     string          `json:"unitLabel,omitempty"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	CartUnitPrice decimal.Decimal `json:"cartUnitPrice"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
	Available     bool            `json:"available"`
	PriceChanged  bool            `json:"priceChanged"`
}

type Quote struct {
	UserID     string          `json:"userId"`
	EpicerieID int64           `json:"epicerieId"`
	Lines      []QuoteLine     `json:"lines"`
	SubTotal   decimal.Decimal `json:"subTotal"`
}

// Unavailable lists the lines that can no longer be ordered.
func (q Quote) Unavailable() []QuoteLine {
	var out []QuoteLine
	for _, l := range q.Lines {
		if !l.Available {
			out = append(out, l)
		}
	}
	return out
}

type PlaceOrderRequest struct {
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Note            string          `json:"note"`
}

// OrderDraft is what checkout hands to order submission.
type OrderDraft struct {
	UserID          string
	EpicerieID      int64
	Lines           []QuoteLine
	DeliveryFee     decimal.Decimal
	DeliveryAddress string
	Note            string
}

type Placement struct {
	OrderID   string          `json:"orderId"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}
