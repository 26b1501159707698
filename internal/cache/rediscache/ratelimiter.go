package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// bucketTTL outlives the minute bucket by a margin so a count never expires
// mid-bucket on clock skew between api instances.
const bucketTTL = 70 * time.Second

// RateLimiter caps calls to external services (the pricing benchmark) across
// all quote-api instances sharing one redis. Counting is per-minute: each
// operation gets one INCR bucket keyed by the wall-clock minute.
type RateLimiter struct {
	c *redis.Client
}

func NewRateLimiter(addr string) *RateLimiter {
	return &RateLimiter{
		c: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// AllowPerMinute increments op's bucket for the minute containing at and
// reports whether the count is still within limit. The bucket TTL is set on
// every call; redis keeps the earliest one.
func (rl *RateLimiter) AllowPerMinute(ctx context.Context, op string, limit int64, at time.Time) (bool, int64, error) {
	key := keyNamespace + "rl:" + op + ":" + at.UTC().Format("200601021504")

	pipe := rl.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, bucketTTL)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, errors.Wrap(err, "redis ratelimit")
	}
	n := incr.Val()
	return n <= limit, n, nil
}
