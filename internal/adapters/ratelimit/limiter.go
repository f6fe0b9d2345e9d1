// Package ratelimit throttles match requests per user with a Redis fixed
// window counter (INCR + EXPIRE).
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Rule is a rate limiting policy.
type Rule struct {
	Key    string        // key prefix
	Limit  int           // max count in the window
	Window time.Duration // window length
}

// MatchRule builds the per-user rule for match requests.
func MatchRule(perMinute int) Rule {
	return Rule{Key: "rl:match:", Limit: perMinute, Window: time.Minute}
}

// Limiter checks counters in Redis.
type Limiter struct {
	client redis.Cmdable
	log    logger.Logger
}

// NewLimiter creates a Limiter backed by client.
func NewLimiter(client redis.Cmdable) *Limiter {
	return &Limiter{client: client, log: logger.Get().Named("ratelimit")}
}

// Allow increments the counter of identifier and reports whether it is still
// within rule. Redis errors fail open: the request is allowed and the error
// returned for logging.
func (l *Limiter) Allow(ctx context.Context, identifier string, rule Rule) (bool, error) {
	if rule.Limit <= 0 {
		return true, nil
	}
	key := rule.Key + identifier

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.log.Warn(ctx, "redis INCR failed, failing open", logger.String("key", key), logger.Error(err))
		return true, fmt.Errorf("incr %s: %w", key, err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, rule.Window).Err(); err != nil {
			l.log.Warn(ctx, "redis EXPIRE failed, failing open", logger.String("key", key), logger.Error(err))
			// a key without TTL would block the identifier forever
			l.client.Del(ctx, key)
			return true, fmt.Errorf("expire %s: %w", key, err)
		}
	}

	if int(count) > rule.Limit {
		metrics.RecordRateLimited()
		return false, nil
	}
	return true, nil
}

// Remaining returns how many requests identifier has left in the current
// window. Errors fail open with the full limit.
func (l *Limiter) Remaining(ctx context.Context, identifier string, rule Rule) (int, error) {
	key := rule.Key + identifier

	count, err := l.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return rule.Limit, nil
	}
	if err != nil {
		return rule.Limit, fmt.Errorf("get %s: %w", key, err)
	}
	return max(0, rule.Limit-count), nil
}
