package adapter

import (
	"context"

	"github.com/dwikikusuma/epicerie/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/epicerie/internal/order/app"
	orderdomain "github.com/dwikikusuma/epicerie/internal/order/domain"
)

type OrderServicePlacer struct {
	svc *orderapp.Service
}

func NewOrderServicePlacer(svc *orderapp.Service) *OrderServicePlacer {
	return &OrderServicePlacer{svc: svc}
}

func (p *OrderServicePlacer) PlaceOrder(ctx context.Context, draft domain.OrderDraft) (domain.Placement, error) {
	items := make([]orderdomain.OrderItemRequest, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		items = append(items, orderdomain.OrderItemRequest{
			ProductID:  l.ProductID,
			UnitID:     l.UnitID,
			Name:       l.Name,
			UnitLabel:  l.UnitLabel,
			UnitAmount: l.UnitPrice,
			Quantity:   l.Quantity,
		})
	}

	resp, err := p.svc.CreateOrder(ctx, orderdomain.CreateOrderRequest{
		UserID:          draft.UserID,
		EpicerieID:      draft.EpicerieID,
		DeliveryAmount:  draft.DeliveryFee,
		DeliveryAddress: draft.DeliveryAddress,
		Note:            draft.Note,
		Items:           items,
	})
	if err != nil {
		return domain.Placement{}, err
	}

	return domain.Placement{
		OrderID:   resp.ID,
		Status:    resp.Status,
		Total:     resp.TotalAmount,
		CreatedAt: resp.CreatedAt,
	}, nil
}
