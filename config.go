package veriauth

import (
	"bytes"
	"errors"
	"time"
)

// Config groups the engine's tunables. Zero values are rejected by
// Validate; start from [DefaultConfig] and override what you need.
type Config struct {
	JWT          JWTConfig
	Verification VerificationConfig
	OTP          OTPConfig
	RateLimit    RateLimitConfig
	Cache        CacheConfig

	// ConnectTimeout bounds the Redis ping performed at build time.
	ConnectTimeout time.Duration
}

// JWTConfig configures the session token pair. Access and refresh tokens
// are signed with independent HS256 secrets.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
}

// VerificationConfig configures the email-ownership proof step.
type VerificationConfig struct {
	// TTL is the window within which the emailed link must be followed.
	TTL time.Duration
	// TokenBytes is the entropy of the verification token before hex
	// encoding. Validate enforces a 32-byte floor.
	TokenBytes int
	// LinkBase is prepended to "/<token>" to build the emailed link.
	LinkBase string
}

// OTPConfig configures the login second factor.
type OTPConfig struct {
	TTL time.Duration
}

// RateLimitConfig configures the boolean request gate.
type RateLimitConfig struct {
	TTL time.Duration
}

// CacheConfig configures the cache-aside user snapshot. Records may be
// served up to UserTTL stale after an out-of-band mutation; callers that
// mutate users should invoke [Engine.InvalidateUser].
type CacheConfig struct {
	UserTTL time.Duration
}

// DefaultConfig returns the stock tunables: 5 minute verification and OTP
// windows, a 60 second rate-limit gate, 1 minute access / 7 day refresh
// tokens, and a 1 hour user-cache snapshot.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Verification: VerificationConfig{
			TTL:        5 * time.Minute,
			TokenBytes: 32,
		},
		OTP: OTPConfig{
			TTL: 5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			TTL: 60 * time.Second,
		},
		Cache: CacheConfig{
			UserTTL: time.Hour,
		},
		ConnectTimeout: 30 * time.Second,
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt TTLs must be positive")
	}
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return errors.New("jwt secrets required")
	}
	// A shared secret lets a refresh token verify as an access token.
	if bytes.Equal(c.JWT.AccessSecret, c.JWT.RefreshSecret) {
		return errors.New("jwt access and refresh secrets must differ")
	}
	if c.Verification.TTL <= 0 {
		return errors.New("verification TTL must be positive")
	}
	if c.Verification.TokenBytes < 32 {
		return errors.New("verification token must carry at least 32 bytes of entropy")
	}
	if c.OTP.TTL <= 0 {
		return errors.New("otp TTL must be positive")
	}
	if c.RateLimit.TTL <= 0 {
		return errors.New("rate limit TTL must be positive")
	}
	if c.Cache.UserTTL <= 0 {
		return errors.New("user cache TTL must be positive")
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("connect timeout must be positive")
	}
	return nil
}
