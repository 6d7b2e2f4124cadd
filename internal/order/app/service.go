package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/epicerie/internal/order/domain"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo OrderRepo
}

const (
	OrderStatusPending = "PENDING"
)

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.OrderResponse, error) {
	if strings.TrimSpace(req.UserID) == "" || req.EpicerieID <= 0 || len(req.Items) == 0 {
		return domain.OrderResponse{}, ErrInvalidInput
	}
	if req.DeliveryAmount.IsNegative() {
		return domain.OrderResponse{}, fmt.Errorf("%w: delivery amount cannot be negative, got %s", ErrInvalidInput, req.DeliveryAmount)
	}

	orderItem := make([]domain.OrderItem, 0, len(req.Items))
	subTotalAmount := decimal.Zero

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: quantity must be positive, got %d", ErrInvalidInput, i, item.Quantity)
		}
		if item.UnitAmount.IsNegative() {
			return domain.OrderResponse{}, fmt.Errorf("%w: item %d: unit amount cannot be negative, got %s", ErrInvalidInput, i, item.UnitAmount)
		}

		lineTotal := item.UnitAmount.Mul(decimal.NewFromInt(int64(item.Quantity)))
		orderItem = append(orderItem, domain.OrderItem{
			ProductID:       item.ProductID,
			UnitID:          item.UnitID,
			Name:            item.Name,
			UnitLabel:       item.UnitLabel,
			UnitAmount:      item.UnitAmount,
			Quantity:        item.Quantity,
			LineTotalAmount: lineTotal,
		})

		subTotalAmount = subTotalAmount.Add(lineTotal)
	}

	order := domain.Order{
		UserID:          req.UserID,
		EpicerieID:      req.EpicerieID,
		Status:          OrderStatusPending,
		DeliveryAmount:  req.DeliveryAmount,
		SubTotalAmount:  subTotalAmount,
		TotalAmount:     subTotalAmount.Add(req.DeliveryAmount),
		DeliveryAddress: req.DeliveryAddress,
		Note:            req.Note,
		OrderItems:      orderItem,
	}

	createdOrder, err := s.repo.Submit(ctx, order)
	if err != nil {
		return domain.OrderResponse{}, err
	}

	return domain.OrderResponse{
		ID:          createdOrder.ID,
		Status:      createdOrder.Status,
		TotalAmount: createdOrder.TotalAmount,
		CreatedAt:   createdOrder.CreatedAt,
	}, nil
}
