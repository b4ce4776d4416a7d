package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Gopher0727/Accounts/config"
)

// Rule caps the number of hits per key inside one fixed window.
// A Limit of zero disables the rule.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter defines the interface for rate limiting operations
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Decision, error)
	Reset(ctx context.Context, key string, rule Rule) error
}

// BotCreateRule is the per-owner bot creation rule.
func BotCreateRule(cfg config.RateLimitConfig) Rule {
	return Rule{Limit: cfg.BotCreateLimit, Window: cfg.BotCreateWindow}
}

// BotCreateKey is the bucket of one owner.
func BotCreateKey(ownerID uint64) string {
	return fmt.Sprintf("bot_create:%d", ownerID)
}

// WindowLimiter counts hits in redis with INCRBY + PEXPIRE per fixed window.
// Safe for use by many processes sharing the same redis.
type WindowLimiter struct {
	client   redis.UniversalClient
	logger   *zap.Logger
	failOpen bool
	now      func() time.Time
}

// NewWindowLimiter creates a redis-backed fixed-window limiter.
//
// Parameters:
//   - client: Redis client (single node or cluster)
//   - logger: Logger for redis failures
//   - failOpen: Whether to allow requests when redis is unreachable
//
// Returns:
//   - *WindowLimiter: A limiter ready for use
func NewWindowLimiter(client redis.UniversalClient, logger *zap.Logger, failOpen bool) *WindowLimiter {
	return &WindowLimiter{
		client:   client,
		logger:   logger,
		failOpen: failOpen,
		now:      time.Now,
	}
}

// Allow records one hit for key and reports whether it fits the rule.
//
// Parameters:
//   - ctx: Context for the redis round trip
//   - key: The bucket key, e.g. BotCreateKey(ownerID)
//   - rule: Limit and window; a zero limit always allows
//
// Returns:
//   - Decision: Whether the hit is allowed, the remaining quota and the retry delay
//   - error: Redis error when the limiter fails closed
func (l *WindowLimiter) Allow(ctx context.Context, key string, rule Rule) (Decision, error) {
	if rule.Limit <= 0 || rule.Window <= 0 {
		return Decision{Allowed: true, Remaining: -1}, nil
	}

	now := l.now()
	bucketKey, windowEnd := bucket(key, now, rule.Window)

	pipe := l.client.TxPipeline()
	incr := pipe.IncrBy(ctx, bucketKey, 1)
	pipe.PExpire(ctx, bucketKey, rule.Window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("rate limit check failed",
			zap.String("key", bucketKey),
			zap.Error(err),
		)
		if l.failOpen {
			l.logger.Warn("rate limit check failed, allowing request (fail-open)", zap.String("key", key))
			return Decision{Allowed: true, Remaining: -1}, nil
		}
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(incr.Val())
	if count > rule.Limit {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int("count", count),
			zap.Int("limit", rule.Limit),
			zap.Duration("window", rule.Window),
		)
		return Decision{Allowed: false, RetryAfter: windowEnd.Sub(now)}, nil
	}
	return Decision{Allowed: true, Remaining: rule.Limit - count}, nil
}

// Reset clears the current window of key.
func (l *WindowLimiter) Reset(ctx context.Context, key string, rule Rule) error {
	if rule.Window <= 0 {
		return nil
	}
	bucketKey, _ := bucket(key, l.now(), rule.Window)
	if err := l.client.Del(ctx, bucketKey).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit for key %s: %w", key, err)
	}
	l.logger.Info("rate limit reset", zap.String("key", key))
	return nil
}

func bucket(key string, now time.Time, window time.Duration) (string, time.Time) {
	start := now.Truncate(window)
	return fmt.Sprintf("ratelimit:%s:%d", key, start.UnixMilli()), start.Add(window)
}

// Unlimited allows everything. Used when redis is disabled.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string, Rule) (Decision, error) {
	return Decision{Allowed: true, Remaining: -1}, nil
}

func (Unlimited) Reset(context.Context, string, Rule) error { return nil }
