package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/epicerie/internal/session"
	"github.com/dwikikusuma/epicerie/pkg/grpcjson/grpcjsontest"
	"github.com/dwikikusuma/epicerie/pkg/kv"
	"github.com/dwikikusuma/epicerie/pkg/logger"
)

type cartSpy struct {
	cleared []string
}

func (c *cartSpy) ClearCart(ctx context.Context, userID string) error {
	c.cleared = append(c.cleared, userID)
	return nil
}

func TestSessionService(t *testing.T) {
	ctx := context.Background()
	carts := &cartSpy{}
	store := session.NewStore(kv.NewMemoryStore(), carts, logger.Discard())
	c := NewClient(grpcjsontest.Dial(t, func(s *grpc.Server) { Register(s, NewServer(store)) }))

	_, err := c.Current(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.Login(ctx, &session.Session{UserID: "u1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.Login(ctx, &session.Session{Token: "tok", UserID: "u1", Role: session.RoleClient})
	require.NoError(t, err)

	sess, err := c.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, session.RoleClient, sess.Role)

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, []string{"u1"}, carts.cleared)

	_, err = c.Current(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
