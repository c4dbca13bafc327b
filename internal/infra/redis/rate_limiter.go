package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter: the first hit in a window sets the expiry.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	} else if ttl, err := r.client.TTL(ctx, key); err == nil && ttl < 0 {
		// a crash between INCR and EXPIRE would leave the key without expiry
		_ = r.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

func RedeemKey(userID string) string {
	return fmt.Sprintf("rate_limit:redeem:%s", userID)
}

func LoginKey(email string) string {
	return fmt.Sprintf("rate_limit:login:%s", email)
}
