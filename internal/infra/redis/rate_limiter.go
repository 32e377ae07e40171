package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow counts one hit against key and reports whether it is within limit for
// the current window. The window starts with the first hit. A non-positive
// limit disables the check.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	n, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// SubmissionKey is the limiter key for payment submissions from one phone
// number. The number is hashed so it never appears in Redis.
func SubmissionKey(phone string) string {
	sum := sha256.Sum256([]byte(phone))
	return "rate_limit:submit:" + hex.EncodeToString(sum[:12])
}
