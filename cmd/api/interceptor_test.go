package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/epicerie/pkg/logger"
)

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Service: "api", Env: "test", Level: "debug", Output: &buf})
	info := &grpc.UnaryServerInfo{FullMethod: "/epicerie.cart.v1.CartService/GetCart"}

	_, err := logging(log)(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.Internal, "boom")
	})
	require.Error(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "/epicerie.cart.v1.CartService/GetCart", entry["method"])
	assert.Equal(t, "Internal", entry["code"])
}
