package veriauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const verifyKeyPrefix = "verify"

var errPendingNotFound = errors.New("pending registration not found")

// pendingRegistration parks a validated registration in Redis until the
// emailed link is followed. Its existence does not guarantee the email is
// still free; the create at consumption time is the authority.
type pendingRegistration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
}

type pendingStore struct {
	redis *redis.Client
}

func newPendingStore(redisClient *redis.Client) *pendingStore {
	return &pendingStore{redis: redisClient}
}

func (s *pendingStore) key(token string) string {
	return verifyKeyPrefix + ":" + token
}

func (s *pendingStore) Save(ctx context.Context, token string, rec pendingRegistration, ttl time.Duration) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(token), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Consume reads and unconditionally deletes the entry, making the token
// single-use regardless of what the caller does with the result.
func (s *pendingStore) Consume(ctx context.Context, token string) (pendingRegistration, error) {
	var rec pendingRegistration

	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, errPendingNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.redis.Del(ctx, s.key(token)).Err(); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, errPendingNotFound
	}
	return rec, nil
}
