package veriauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const userKeyPrefix = "user"

var errCacheMiss = errors.New("user cache miss")

// userCache holds cache-aside snapshots of user records, keyed by
// identity. It is a pure read optimization: a miss or a decode failure is
// never an error for the caller, only a fallthrough to the durable store.
// Snapshots never carry a password hash.
type userCache struct {
	redis *redis.Client
}

func newUserCache(redisClient *redis.Client) *userCache {
	return &userCache{redis: redisClient}
}

func (c *userCache) key(id string) string {
	return userKeyPrefix + ":" + id
}

func (c *userCache) Get(ctx context.Context, id string) (User, error) {
	var u User

	data, err := c.redis.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return u, errCacheMiss
	}
	if err != nil {
		return u, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return u, errCacheMiss
	}
	return u, nil
}

func (c *userCache) Save(ctx context.Context, u User, ttl time.Duration) error {
	encoded, err := json.Marshal(u.Sanitized())
	if err != nil {
		return err
	}
	if err := c.redis.Set(ctx, c.key(u.ID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (c *userCache) Delete(ctx context.Context, id string) error {
	if err := c.redis.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
