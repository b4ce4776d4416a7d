package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gopher0727/Accounts/config"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func newTestLimiter(t *testing.T, failOpen bool) (*WindowLimiter, *miniredis.Miniredis) {
	client, mr := setupTestRedis(t)
	l := NewWindowLimiter(client, zap.NewNop(), failOpen)
	l.now = func() time.Time { return time.Date(2025, 1, 1, 10, 0, 30, 0, time.UTC) }
	return l, mr
}

func TestWindowLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, false)
	ctx := context.Background()
	rule := Rule{Limit: 3, Window: time.Minute}

	for i := range rule.Limit {
		d, err := l.Allow(ctx, BotCreateKey(1), rule)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, rule.Limit-i-1, d.Remaining)
	}

	d, err := l.Allow(ctx, BotCreateKey(1), rule)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	// Owners do not share buckets.
	d, err = l.Allow(ctx, BotCreateKey(2), rule)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestWindowLimiter_NextWindowRecovers(t *testing.T) {
	l, _ := newTestLimiter(t, false)
	ctx := context.Background()
	rule := Rule{Limit: 1, Window: time.Minute}

	d, _ := l.Allow(ctx, "k", rule)
	require.True(t, d.Allowed)
	d, _ = l.Allow(ctx, "k", rule)
	require.False(t, d.Allowed)

	l.now = func() time.Time { return time.Date(2025, 1, 1, 10, 1, 0, 0, time.UTC) }
	d, err := l.Allow(ctx, "k", rule)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestWindowLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(t, false)
	ctx := context.Background()
	rule := Rule{Limit: 1, Window: time.Minute}

	_, _ = l.Allow(ctx, "k", rule)
	require.NoError(t, l.Reset(ctx, "k", rule))

	d, err := l.Allow(ctx, "k", rule)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestWindowLimiter_ZeroLimitDisablesRule(t *testing.T) {
	l, mr := newTestLimiter(t, false)
	d, err := l.Allow(context.Background(), "k", Rule{})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Empty(t, mr.Keys())
}

func TestWindowLimiter_ConcurrentRequests(t *testing.T) {
	l, _ := newTestLimiter(t, false)
	ctx := context.Background()
	rule := Rule{Limit: 10, Window: time.Minute}

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			d, err := l.Allow(ctx, "shared", rule)
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()
	assert.Equal(t, int32(rule.Limit), allowed.Load())
}

func TestWindowLimiter_FailOpen(t *testing.T) {
	l, mr := newTestLimiter(t, true)
	mr.Close()

	d, err := l.Allow(context.Background(), "k", Rule{Limit: 1, Window: time.Minute})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestWindowLimiter_FailClosed(t *testing.T) {
	l, mr := newTestLimiter(t, false)
	mr.Close()

	_, err := l.Allow(context.Background(), "k", Rule{Limit: 1, Window: time.Minute})
	assert.Error(t, err)
}

func TestBotCreateRule(t *testing.T) {
	rule := BotCreateRule(config.RateLimitConfig{BotCreateLimit: 5, BotCreateWindow: time.Hour})
	assert.Equal(t, Rule{Limit: 5, Window: time.Hour}, rule)
}
