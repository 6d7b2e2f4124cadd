// Package bootstrap wires the services shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	cartapp "github.com/dwikikusuma/epicerie/internal/cart/app"
	cartgrpc "github.com/dwikikusuma/epicerie/internal/cart/grpc"
	catalogapp "github.com/dwikikusuma/epicerie/internal/catalog/app"
	cataloggrpc "github.com/dwikikusuma/epicerie/internal/catalog/grpc"
	catalogapi "github.com/dwikikusuma/epicerie/internal/catalog/infra/httpapi"
	checkoutapp "github.com/dwikikusuma/epicerie/internal/checkout/app"
	checkoutgrpc "github.com/dwikikusuma/epicerie/internal/checkout/grpc"
	checkoutadapter "github.com/dwikikusuma/epicerie/internal/checkout/infra/adapter"
	orderapp "github.com/dwikikusuma/epicerie/internal/order/app"
	orderapi "github.com/dwikikusuma/epicerie/internal/order/infra/httpapi"
	prepapp "github.com/dwikikusuma/epicerie/internal/preparation/app"
	prepgrpc "github.com/dwikikusuma/epicerie/internal/preparation/grpc"
	prepapi "github.com/dwikikusuma/epicerie/internal/preparation/infra/httpapi"
	"github.com/dwikikusuma/epicerie/internal/pricing"
	"github.com/dwikikusuma/epicerie/internal/session"
	sessiongrpc "github.com/dwikikusuma/epicerie/internal/session/grpc"
	"github.com/dwikikusuma/epicerie/pkg/config"
	"github.com/dwikikusuma/epicerie/pkg/kv"
	"github.com/dwikikusuma/epicerie/pkg/kv/rediskv"
	"github.com/dwikikusuma/epicerie/pkg/remote"
)

const maxConcurrent = 10

type Services struct {
	Store       kv.Store
	Calculator  pricing.Calculator
	Session     *session.Store
	Cart        *cartapp.Service
	Catalog     *catalogapp.Service
	Orders      *orderapp.Service
	Checkout    *checkoutapp.Service
	Preparation *prepapp.Service

	closers []func() error
}

// Build opens the key-value store (Redis when configured, memory otherwise)
// and assembles every service on top of it and the remote API client.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (*Services, error) {
	rounding, err := pricing.ParseRounding(cfg.Pricing.UnitRounding)
	if err != nil {
		return nil, err
	}

	s := &Services{Calculator: pricing.NewCalculator(rounding)}

	if cfg.Redis.URL != "" {
		rs, err := rediskv.Open(ctx, cfg.Redis.URL, cfg.Redis.Namespace)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		s.Store = rs
		s.closers = append(s.closers, rs.Close)
		log.Info("state store ready", slog.String("backend", "redis"))
	} else {
		s.Store = kv.NewMemoryStore()
		log.Warn("REDIS_URL not set, state is kept in memory")
	}

	s.Cart = cartapp.NewService(s.Store, log)
	s.Session = session.NewStore(s.Store, s.Cart, log)

	api := remote.New(cfg.Remote.BaseURL, cfg.Remote.Timeout,
		remote.WithTokenSource(s.Session),
		remote.WithSessionInvalidator(s.Session),
		remote.WithLogger(log),
	)

	s.Catalog = catalogapp.NewService(catalogapi.NewProductRepo(api), s.Store, cfg.Catalog.CacheTTL, log)
	s.Orders = orderapp.NewService(orderapi.NewOrderRepo(api))
	s.Checkout = checkoutapp.NewService(
		checkoutadapter.NewCartServiceReader(s.Cart),
		checkoutadapter.NewCatalogServiceReader(s.Catalog),
		checkoutadapter.NewOrderServicePlacer(s.Orders),
		maxConcurrent,
		log,
	)
	s.Preparation = prepapp.NewService(s.Store, prepapi.NewOrderSource(api), maxConcurrent, log)

	return s, nil
}

// Register exposes every service on srv together with the standard health
// service.
func (s *Services) Register(srv *grpc.Server) *health.Server {
	cartgrpc.Register(srv, cartgrpc.NewServer(s.Cart))
	cataloggrpc.Register(srv, cataloggrpc.NewServer(s.Catalog, s.Calculator))
	checkoutgrpc.Register(srv, checkoutgrpc.NewServer(s.Checkout))
	prepgrpc.Register(srv, prepgrpc.NewServer(s.Preparation))
	sessiongrpc.Register(srv, sessiongrpc.NewServer(s.Session))

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return hs
}

func (s *Services) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
