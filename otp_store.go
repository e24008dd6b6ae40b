package veriauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "otp"

var errOTPNotFound = errors.New("otp challenge not found")

// otpStore holds at most one live challenge per email; Save over an
// unexpired key supersedes the prior code.
type otpStore struct {
	redis *redis.Client
}

func newOTPStore(redisClient *redis.Client) *otpStore {
	return &otpStore{redis: redisClient}
}

func (s *otpStore) key(email string) string {
	return otpKeyPrefix + ":" + email
}

func (s *otpStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *otpStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.redis.Get(ctx, s.key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errOTPNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return code, nil
}

func (s *otpStore) Delete(ctx context.Context, email string) error {
	if err := s.redis.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
