package grpc

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/epicerie/internal/catalog/app"
	"github.com/dwikikusuma/epicerie/internal/catalog/domain"
	"github.com/dwikikusuma/epicerie/internal/pricing"
	"github.com/dwikikusuma/epicerie/pkg/grpcjson"
)

const ServiceName = "epicerie.catalog.v1.CatalogService"

type GetProductRequest struct {
	ID string `json:"id"`
}

type UnitView struct {
	domain.ProductUnit
	StockLevel pricing.StockLevel `json:"stockLevel"`
	PriceLabel string             `json:"priceLabel"`
}

type ProductReply struct {
	Product domain.Product `json:"product"`
	Units   []UnitView     `json:"units"`
}

type ListProductsRequest struct {
	EpicerieID int64  `json:"epicerieId"`
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
	Cursor     string `json:"cursor"`
}

type ListProductsReply struct {
	Products   []domain.Product `json:"products"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

type QuoteUnitRequest struct {
	ProductID string  `json:"productId"`
	UnitID    string  `json:"unitId"`
	Requested float64 `json:"requested"`
}

type QuoteUnitReply struct {
	ProductID   string             `json:"productId"`
	UnitID      string             `json:"unitId"`
	Requested   float64            `json:"requested"`
	UnitsNeeded decimal.Decimal    `json:"unitsNeeded"`
	Price       decimal.Decimal    `json:"price"`
	PriceLabel  string             `json:"priceLabel"`
	Orderable   bool               `json:"orderable"`
	StockLevel  pricing.StockLevel `json:"stockLevel"`
}

type Server struct {
	svc  *app.Service
	calc pricing.Calculator
}

func NewServer(svc *app.Service, calc pricing.Calculator) *Server {
	return &Server{svc: svc, calc: calc}
}

func (s *Server) GetProduct(ctx context.Context, req *GetProductRequest) (*ProductReply, error) {
	p, err := s.svc.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, mapErr(err)
	}

	units := p.PurchasableUnits()
	views := make([]UnitView, 0, len(units))
	for _, u := range units {
		views = append(views, UnitView{
			ProductUnit: u,
			StockLevel:  pricing.GetStockLevel(u.Stock),
			PriceLabel:  pricing.FormatPrice(u.Prix),
		})
	}
	return &ProductReply{Product: p, Units: views}, nil
}

func (s *Server) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsReply, error) {
	products, next, err := s.svc.ListProducts(ctx, req.EpicerieID, req.Query, req.Limit, req.Cursor)
	if err != nil {
		return nil, mapErr(err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return &ListProductsReply{Products: products, NextCursor: next}, nil
}

func (s *Server) QuoteUnit(ctx context.Context, req *QuoteUnitRequest) (*QuoteUnitReply, error) {
	if req.Requested <= 0 {
		return nil, status.Error(codes.InvalidArgument, "requested quantity must be positive")
	}
	p, err := s.svc.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, mapErr(err)
	}
	q, err := s.calc.Quote(p, req.UnitID, req.Requested)
	if err != nil {
		return nil, mapErr(err)
	}
	return &QuoteUnitReply{
		ProductID:   p.ID,
		UnitID:      q.Unit.ID,
		Requested:   q.Requested,
		UnitsNeeded: q.UnitsNeeded,
		Price:       q.Price,
		PriceLabel:  pricing.FormatPrice(q.Price),
		Orderable:   q.Orderable,
		StockLevel:  q.Stock,
	}, nil
}

func mapErr(err error) error {
	if errors.Is(err, app.ErrInvalidInput) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if errors.Is(err, app.ErrNotFound) || errors.Is(err, pricing.ErrUnknownUnit) {
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

type handler interface {
	GetProduct(context.Context, *GetProductRequest) (*ProductReply, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsReply, error)
	QuoteUnit(context.Context, *QuoteUnitRequest) (*QuoteUnitReply, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*handler)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "GetProduct", handler.GetProduct),
		grpcjson.Unary(ServiceName, "ListProducts", handler.ListProducts),
		grpcjson.Unary(ServiceName, "QuoteUnit", handler.QuoteUnit),
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

func (c *Client) GetProduct(ctx context.Context, req *GetProductRequest) (*ProductReply, error) {
	return grpcjson.Invoke[ProductReply](ctx, c.cc, ServiceName, "GetProduct", req)
}

func (c *Client) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsReply, error) {
	return grpcjson.Invoke[ListProductsReply](ctx, c.cc, ServiceName, "ListProducts", req)
}

func (c *Client) QuoteUnit(ctx context.Context, req *QuoteUnitRequest) (*QuoteUnitReply, error) {
	return grpcjson.Invoke[QuoteUnitReply](ctx, c.cc, ServiceName, "QuoteUnit", req)
}
