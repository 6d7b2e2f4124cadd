package grpcjson

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type echoReq struct {
	Text string `json:"text"`
}

type echoResp struct {
	Text  string `json:"text"`
	Calls int    `json:"calls"`
}

type echoServer struct {
	calls int
}

func (s *echoServer) Echo(ctx context.Context, in *echoReq) (*echoResp, error) {
	if in.Text == "" {
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}
	s.calls++
	return &echoResp{Text: in.Text, Calls: s.calls}, nil
}

var echoDesc = grpc.ServiceDesc{
	ServiceName: "test.Echo",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		Unary("test.Echo", "Echo", (*echoServer).Echo),
	},
}

func TestUnaryRoundTrip(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	var intercepted []string
	srv := grpc.NewServer(grpc.UnaryInterceptor(func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		intercepted = append(intercepted, info.FullMethod)
		return h(ctx, req)
	}))
	srv.RegisterService(&echoDesc, &echoServer{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx := context.Background()
	out, err := Invoke[echoResp](ctx, conn, "test.Echo", "Echo", &echoReq{Text: "bonjour"})
	require.NoError(t, err)
	assert.Equal(t, "bonjour", out.Text)
	assert.Equal(t, 1, out.Calls)
	assert.Equal(t, []string{"/test.Echo/Echo"}, intercepted)

	_, err = Invoke[echoResp](ctx, conn, "test.Echo", "Echo", &echoReq{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
