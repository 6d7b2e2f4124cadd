package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dwikikusuma/epicerie/internal/bootstrap"
	"github.com/dwikikusuma/epicerie/pkg/config"
	"github.com/dwikikusuma/epicerie/pkg/logger"
	"github.com/dwikikusuma/epicerie/pkg/shutdown"
	"github.com/dwikikusuma/epicerie/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "api", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	stopTracing, err := telemetry.Setup(telemetry.Options{Service: "epicerie-api", Env: cfg.AppEnv, Enabled: cfg.Tracing.Enabled})
	if err != nil {
		log.Error("tracing setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() { _ = stopTracing(context.Background()) }()

	svcs, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Error("bootstrap failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer svcs.Close()

	addr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", addr))
		os.Exit(1)
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(logging(log)))
	health := svcs.Register(grpcServer)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("grpc starting", slog.String("addr", addr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc serve error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")
	health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	if !shutdown.Graceful(10*time.Second, grpcServer.GracefulStop, grpcServer.Stop) {
		log.Warn("graceful stop timeout, forced stop")
	}

	wg.Wait()
	log.Info("bye")
}
