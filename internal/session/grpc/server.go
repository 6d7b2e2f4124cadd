package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/epicerie/internal/session"
	"github.com/dwikikusuma/epicerie/pkg/grpcjson"
)

const ServiceName = "epicerie.session.v1.SessionService"

type Empty struct{}

type Server struct {
	store *session.Store
}

func NewServer(store *session.Store) *Server {
	return &Server{store: store}
}

func (s *Server) Login(ctx context.Context, req *session.Session) (*session.Session, error) {
	if err := s.store.Save(ctx, *req); err != nil {
		return nil, mapErr(err)
	}
	return req, nil
}

func (s *Server) Current(ctx context.Context, _ *Empty) (*session.Session, error) {
	sess, err := s.store.Current(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sess, nil
}

func (s *Server) Logout(ctx context.Context, _ *Empty) (*Empty, error) {
	if err := s.store.Logout(ctx); err != nil {
		return nil, mapErr(err)
	}
	return &Empty{}, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, session.ErrInvalidSession):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, session.ErrNoSession):
		return status.Error(codes.Unauthenticated, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}

type handler interface {
	Login(context.Context, *session.Session) (*session.Session, error)
	Current(context.Context, *Empty) (*session.Session, error)
	Logout(context.Context, *Empty) (*Empty, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*handler)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "Login", handler.Login),
		grpcjson.Unary(ServiceName, "Current", handler.Current),
		grpcjson.Unary(ServiceName, "Logout", handler.Logout),
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

func (c *Client) Login(ctx context.Context, req *session.Session) (*session.Session, error) {
	return grpcjson.Invoke[session.Session](ctx, c.cc, ServiceName, "Login", req)
}

func (c *Client) Current(ctx context.Context) (*session.Session, error) {
	return grpcjson.Invoke[session.Session](ctx, c.cc, ServiceName, "Current", &Empty{})
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := grpcjson.Invoke[Empty](ctx, c.cc, ServiceName, "Logout", &Empty{})
	return err
}
