package veriauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	actionRegister = "register"
	actionLogin    = "login"
)

// rateLimiter is a boolean gate, not a counter: the mere presence of the
// flag blocks a repeated (action, client, email) triple, and the flag is
// only armed once the flow reaches its dispatch point. Different clients
// attempting the same email, and the same client attempting different
// emails, are throttled independently.
type rateLimiter struct {
	redis *redis.Client
	ttl   time.Duration
}

func newRateLimiter(redisClient *redis.Client, ttl time.Duration) *rateLimiter {
	return &rateLimiter{redis: redisClient, ttl: ttl}
}

func rateLimitKey(action, client, email string) string {
	return action + "-rate-limit:" + client + ":" + email
}

// Allowed reports whether the gate is open. It has no side effects; the
// flow must call Arm after its request is accepted.
func (l *rateLimiter) Allowed(ctx context.Context, action, client, email string) (bool, error) {
	err := l.redis.Get(ctx, rateLimitKey(action, client, email)).Err()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return false, nil
}

// Arm writes the flag, closing the gate until the TTL elapses.
func (l *rateLimiter) Arm(ctx context.Context, action, client, email string) error {
	if err := l.redis.Set(ctx, rateLimitKey(action, client, email), "true", l.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
