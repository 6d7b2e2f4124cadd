package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/epicerie/internal/preparation/app"
	"github.com/dwikikusuma/epicerie/internal/preparation/domain"
	"github.com/dwikikusuma/epicerie/pkg/grpcjson"
)

const ServiceName = "epicerie.preparation.v1.PreparationService"

type OrderRequest struct {
	OrderID string `json:"orderId"`
}

type ScanRequest struct {
	OrderID string `json:"orderId"`
	Barcode string `json:"barcode"`
}

type ItemRequest struct {
	OrderID string `json:"orderId"`
	ItemID  string `json:"itemId"`
}

type QuantityRequest struct {
	OrderID  string  `json:"orderId"`
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
}

type FinishRequest struct {
	OrderID string `json:"orderId"`
	Force   bool   `json:"force"`
}

type OrderReply struct {
	Order    domain.Order    `json:"order"`
	Progress domain.Progress `json:"progress"`
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Start(ctx context.Context, req *OrderRequest) (*OrderReply, error) {
	return orderReply(s.svc.Start(ctx, req.OrderID))
}

func (s *Server) Get(ctx context.Context, req *OrderRequest) (*OrderReply, error) {
	return orderReply(s.svc.Get(ctx, req.OrderID))
}

func (s *Server) ScanBarcode(ctx context.Context, req *ScanRequest) (*domain.OrderItem, error) {
	return itemReply(s.svc.ScanBarcode(ctx, req.OrderID, req.Barcode))
}

func (s *Server) ModifyQuantity(ctx context.Context, req *QuantityRequest) (*domain.OrderItem, error) {
	return itemReply(s.svc.ModifyQuantity(ctx, req.OrderID, req.ItemID, req.Quantity))
}

func (s *Server) CompleteItem(ctx context.Context, req *ItemRequest) (*domain.OrderItem, error) {
	return itemReply(s.svc.CompleteItem(ctx, req.OrderID, req.ItemID))
}

func (s *Server) MarkUnavailable(ctx context.Context, req *ItemRequest) (*domain.OrderItem, error) {
	return itemReply(s.svc.MarkUnavailable(ctx, req.OrderID, req.ItemID))
}

func (s *Server) Progress(ctx context.Context, req *OrderRequest) (*domain.Progress, error) {
	p, err := s.svc.Progress(ctx, req.OrderID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *Server) Finish(ctx context.Context, req *FinishRequest) (*OrderReply, error) {
	return orderReply(s.svc.Finish(ctx, req.OrderID, req.Force))
}

func orderReply(o domain.Order, err error) (*OrderReply, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	return &OrderReply{Order: o, Progress: o.Progress()}, nil
}

func itemReply(it domain.OrderItem, err error) (*domain.OrderItem, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	return &it, nil
}

func mapErr(err error) error {
	var incomplete *domain.IncompleteError
	switch {
	case errors.As(err, &incomplete):
		return status.Error(codes.FailedPrecondition, incomplete.Error())
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, app.ErrNotFound), errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrNoBarcodeMatch):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrItemTerminal), errors.Is(err, domain.ErrOrderClosed),
		errors.Is(err, domain.ErrOrderFinishing), errors.Is(err, domain.ErrNotFinishing),
		errors.Is(err, domain.ErrNotMeasured):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Errorf(codes.Unavailable, "preparation: %v", err)
}

type handler interface {
	Start(context.Context, *OrderRequest) (*OrderReply, error)
	Get(context.Context, *OrderRequest) (*OrderReply, error)
	ScanBarcode(context.Context, *ScanRequest) (*domain.OrderItem, error)
	ModifyQuantity(context.Context, *QuantityRequest) (*domain.OrderItem, error)
	CompleteItem(context.Context, *ItemRequest) (*domain.OrderItem, error)
	MarkUnavailable(context.Context, *ItemRequest) (*domain.OrderItem, error)
	Progress(context.Context, *OrderRequest) (*domain.Progress, error)
	Finish(context.Context, *FinishRequest) (*OrderReply, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*handler)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "Start", handler.Start),
		grpcjson.Unary(ServiceName, "Get", handler.Get),
		grpcjson.Unary(ServiceName, "ScanBarcode", handler.ScanBarcode),
		grpcjson.Unary(ServiceName, "ModifyQuantity", handler.ModifyQuantity),
		grpcjson.Unary(ServiceName, "CompleteItem", handler.CompleteItem),
		grpcjson.Unary(ServiceName, "MarkUnavailable", handler.MarkUnavailable),
		grpcjson.Unary(ServiceName, "Progress", handler.Progress),
		grpcjson.Unary(ServiceName, "Finish", handler.Finish),
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

func (c *Client) Start(ctx context.Context, req *OrderRequest) (*OrderReply, error) {
	return grpcjson.Invoke[OrderReply](ctx, c.cc, ServiceName, "Start", req)
}

func (c *Client) Get(ctx context.Context, req *OrderRequest) (*OrderReply, error) {
	return grpcjson.Invoke[OrderReply](ctx, c.cc, ServiceName, "Get", req)
}

func (c *Client) ScanBarcode(ctx context.Context, req *ScanRequest) (*domain.OrderItem, error) {
	return grpcjson.Invoke[domain.OrderItem](ctx, c.cc, ServiceName, "ScanBarcode", req)
}

func (c *Client) ModifyQuantity(ctx context.Context, req *QuantityRequest) (*domain.OrderItem, error) {
	return grpcjson.Invoke[domain.OrderItem](ctx, c.cc, ServiceName, "ModifyQuantity", req)
}

func (c *Client) CompleteItem(ctx context.Context, req *ItemRequest) (*domain.OrderItem, error) {
	return grpcjson.Invoke[domain.OrderItem](ctx, c.cc, ServiceName, "CompleteItem", req)
}

func (c *Client) MarkUnavailable(ctx context.Context, req *ItemRequest) (*domain.OrderItem, error) {
	return grpcjson.Invoke[domain.OrderItem](ctx, c.cc, ServiceName, "MarkUnavailable", req)
}

func (c *Client) Progress(ctx context.Context, req *OrderRequest) (*domain.Progress, error) {
	return grpcjson.Invoke[domain.Progress](ctx, c.cc, ServiceName, "Progress", req)
}

func (c *Client) Finish(ctx context.Context, req *FinishRequest) (*OrderReply, error) {
	return grpcjson.Invoke[OrderReply](ctx, c.cc, ServiceName, "Finish", req)
}
