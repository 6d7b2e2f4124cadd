package shutdown

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithSignals(t *testing.T) {
	ctx, cancel := withSignals(context.Background(), syscall.SIGUSR1)
	defer cancel()

	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by signal")
	}
}

func TestGraceful(t *testing.T) {
	t.Run("stop finishes in time", func(t *testing.T) {
		forced := false
		ok := Graceful(time.Second, func() {}, func() { forced = true })
		assert.True(t, ok)
		assert.False(t, forced)
	})

	t.Run("force after timeout", func(t *testing.T) {
		release := make(chan struct{})
		forced := false
		ok := Graceful(10*time.Millisecond, func() { <-release }, func() {
			forced = true
			close(release)
		})
		assert.False(t, ok)
		assert.True(t, forced)
	})
}
