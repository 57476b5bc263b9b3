package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLimiter(client, limit, window, "test:"), s
}

func TestRedisLimiter_Window(t *testing.T) {
	lim, s := newTestLimiter(t, 2, 500*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := lim.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, retryAfter, err := lim.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))

	s.FastForward(600 * time.Millisecond)
	allowed, _, err = lim.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	lim, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	allowed, _, err := lim.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = lim.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = lim.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRedisLimiter_InvalidWindow(t *testing.T) {
	lim, _ := newTestLimiter(t, 1, 0)
	_, _, err := lim.Allow(context.Background(), "ip")
	require.Error(t, err)
}
