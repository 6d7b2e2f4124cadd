package grpc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/epicerie/internal/cart/app"
	"github.com/dwikikusuma/epicerie/internal/cart/domain"
	"github.com/dwikikusuma/epicerie/pkg/grpcjson"
)

const ServiceName = "epicerie.cart.v1.CartService"

type UserRequest struct {
	UserID string `json:"userId"`
}

type AddItemRequest struct {
	UserID string          `json:"userId"`
	Item   domain.LineItem `json:"item"`
}

type UpdateQuantityRequest struct {
	UserID    string  `json:"userId"`
	ProductID string  `json:"productId"`
	UnitID    *string `json:"unitId,omitempty"`
	Delta     int     `json:"delta"`
}

type RemoveItemRequest struct {
	UserID    string  `json:"userId"`
	ProductID string  `json:"productId"`
	UnitID    *string `json:"unitId,omitempty"`
}

type CartReply struct {
	UserID string            `json:"userId"`
	Items  []domain.LineItem `json:"items"`
	Count  int               `json:"count"`
	Total  decimal.Decimal   `json:"total"`
}

type CheckoutReply struct {
	EpicerieID int64 `json:"epicerieId"`
	CartReply
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) GetCart(ctx context.Context, req *UserRequest) (*CartReply, error) {
	if req.UserID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	return toReply(req.UserID, s.svc.GetCart(ctx, req.UserID)), nil
}

func (s *Server) AddItem(ctx context.Context, req *AddItemRequest) (*CartReply, error) {
	items, err := s.svc.AddToCart(ctx, req.UserID, req.Item)
	if err != nil {
		return nil, mapErr(err)
	}
	return toReply(req.UserID, items), nil
}

func (s *Server) UpdateQuantity(ctx context.Context, req *UpdateQuantityRequest) (*CartReply, error) {
	items, err := s.svc.UpdateQuantity(ctx, req.UserID, req.ProductID, req.Delta, req.UnitID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toReply(req.UserID, items), nil
}

func (s *Server) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartReply, error) {
	items, err := s.svc.RemoveFromCart(ctx, req.UserID, req.ProductID, req.UnitID)
	if err != nil {
		return nil, mapErr(err)
	}
	return toReply(req.UserID, items), nil
}

func (s *Server) ClearCart(ctx context.Context, req *UserRequest) (*CartReply, error) {
	if err := s.svc.ClearCart(ctx, req.UserID); err != nil {
		return nil, mapErr(err)
	}
	return toReply(req.UserID, nil), nil
}

func (s *Server) ValidateCheckout(ctx context.Context, req *UserRequest) (*CheckoutReply, error) {
	cart, err := s.svc.ValidateForCheckout(ctx, req.UserID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &CheckoutReply{EpicerieID: cart.EpicerieID, CartReply: *toReply(req.UserID, cart.Items)}, nil
}

func toReply(userID string, items []domain.LineItem) *CartReply {
	if items == nil {
		items = []domain.LineItem{}
	}
	return &CartReply{
		UserID: userID,
		Items:  items,
		Count:  domain.Count(items),
		Total:  domain.Total(items),
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrEmptyCart):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, app.ErrMissingStore), errors.Is(err, app.ErrMixedStores), errors.Is(err, app.ErrCorruptCart):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

type handler interface {
	GetCart(context.Context, *UserRequest) (*CartReply, error)
	AddItem(context.Context, *AddItemRequest) (*CartReply, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*CartReply, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*CartReply, error)
	ClearCart(context.Context, *UserRequest) (*CartReply, error)
	ValidateCheckout(context.Context, *UserRequest) (*CheckoutReply, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*handler)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "GetCart", handler.GetCart),
		grpcjson.Unary(ServiceName, "AddItem", handler.AddItem),
		grpcjson.Unary(ServiceName, "UpdateQuantity", handler.UpdateQuantity),
		grpcjson.Unary(ServiceName, "RemoveItem", handler.RemoveItem),
		grpcjson.Unary(ServiceName, "ClearCart", handler.ClearCart),
		grpcjson.Unary(ServiceName, "ValidateCheckout", handler.ValidateCheckout),
	},
}

func Register(r grpc.ServiceRegistrar, s *Server) {
	r.RegisterService(&serviceDesc, s)
}

// Client calls CartService over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetCart(ctx context.Context, req *UserRequest) (*CartReply, error) {
	return grpcjson.Invoke[CartReply](ctx, c.cc, ServiceName, "GetCart", req)
}

func (c *Client) AddItem(ctx context.Context, req *AddItemRequest) (*CartReply, error) {
	return grpcjson.Invoke[CartReply](ctx, c.cc, ServiceName, "AddItem", req)
}

func (c *Client) UpdateQuantity(ctx context.Context, req *UpdateQuantityRequest) (*CartReply, error) {
	return grpcjson.Invoke[CartReply](ctx, c.cc, ServiceName, "UpdateQuantity", req)
}

func (c *Client) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartReply, error) {
	return grpcjson.Invoke[CartReply](ctx, c.cc, ServiceName, "RemoveItem", req)
}

func (c *Client) ClearCart(ctx context.Context, req *UserRequest) (*CartReply, error) {
	return grpcjson.Invoke[CartReply](ctx, c.cc, ServiceName, "ClearCart", req)
}

func (c *Client) ValidateCheckout(ctx context.Context, req *UserRequest) (*CheckoutReply, error) {
	return grpcjson.Invoke[CheckoutReply](ctx, c.cc, ServiceName, "ValidateCheckout", req)
}
