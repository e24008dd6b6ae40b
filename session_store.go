package veriauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh"

var errRefreshNotFound = errors.New("refresh record not found")

// sessionStore records the refresh token currently valid for an identity.
// This record, not the token's own signed expiry, is the revocation source
// of truth: deleting it invalidates the session even though the signature
// stays verifiable for the rest of its seven days.
type sessionStore struct {
	redis *redis.Client
}

func newSessionStore(redisClient *redis.Client) *sessionStore {
	return &sessionStore{redis: redisClient}
}

func (s *sessionStore) key(id string) string {
	return refreshKeyPrefix + ":" + id
}

func (s *sessionStore) SaveRefresh(ctx context.Context, id, token string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(id), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *sessionStore) GetRefresh(ctx context.Context, id string) (string, error) {
	token, err := s.redis.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errRefreshNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return token, nil
}

func (s *sessionStore) DeleteRefresh(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
