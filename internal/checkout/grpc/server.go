package grpc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/epicerie/internal/checkout/app"
	"github.com/dwikikusuma/epicerie/internal/checkout/domain"
	"github.com/dwikikusuma/epicerie/pkg/grpcjson"
)

const ServiceName = "epicerie.checkout.v1.CheckoutService"

type QuoteRequest struct {
	UserID string `json:"userId"`
}

type PlaceOrderRequest struct {
	UserID          string          `json:"userId"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Note            string          `json:"note"`
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Quote(ctx context.Context, req *QuoteRequest) (*domain.Quote, error) {
	if req.UserID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}

	q, err := s.svc.Quote(ctx, req.UserID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &q, nil
}

func (s *Server) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*domain.Placement, error) {
	if req.UserID == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}

	placed, err := s.svc.PlaceOrder(ctx, req.UserID, domain.PlaceOrderRequest{
		DeliveryFee:     req.DeliveryFee,
		DeliveryAddress: req.DeliveryAddress,
		Note:            req.Note,
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return &placed, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrEmptyCart):
		return status.Error(codes.NotFound, "cart is empty")
	case errors.Is(err, app.ErrInvalidCart), errors.Is(err, app.ErrUnavailableItems):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Errorf(codes.Internal, "checkout failed: %v", err)
}

type handler interface {
	Quote(context.Context, *QuoteRequest) (*domain.Quote, error)
	PlaceOrder(context.Context, *PlaceOrderRequest) (*domain.Placement, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*handler)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "Quote", handler.Quote),
		grpcjson.Unary(ServiceName, "PlaceOrder", handler.PlaceOrder),
	},
}

func Register(r grpc.ServiceRegistrar, s *Server) {
	r.RegisterService(&serviceDesc, s)
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Quote(ctx context.Context, req *QuoteRequest) (*domain.Quote, error) {
	return grpcjson.Invoke[domain.Quote](ctx, c.cc, ServiceName, "Quote", req)
}

func (c *Client) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*domain.Placement, error) {
	return grpcjson.Invoke[domain.Placement](ctx, c.cc, ServiceName, "PlaceOrder", req)
}
