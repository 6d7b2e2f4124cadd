package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              string
	UserID          string
	EpicerieID      int64
	Status          string
	SubTotalAmount  decimal.Decimal
	DeliveryAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	DeliveryAddress string
	Note            string
	OrderItems      []OrderItem
	CreatedAt       time.Time
}

type OrderItem struct {
	ProductID       string          `json:"productId"`
	UnitID          *string         `json:"unitId,omitempty"`
	Name            string          `json:"name"`
	UnitLabel       string          `json:"unitLabel,omitempty"`
	UnitAmount      decimal.Decimal `json:"unitAmount"`
	Quantity        int             `json:"quantity"`
	LineTotalAmount decimal.Decimal `json:"lineTotalAmount"`
}

type CreateOrderRequest struct {
	UserID          string
	EpicerieID      int64
	DeliveryAmount  decimal.Decimal
	DeliveryAddress string
	Note            string
	Items           []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID  string
	UnitID     *string
	Name       string
	UnitLabel  string
	UnitAmount decimal.Decimal
	Quantity   int
}

type OrderResponse struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}
