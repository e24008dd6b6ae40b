package veriauth

import (
	"context"

	"github.com/veriauth/veriauth/jwt"
	"go.uber.org/zap"
)

// Engine orchestrates the registration, login, and session flows against
// an injected Redis client and the external collaborators. Build one with
// [New]; a built engine is immutable and safe for concurrent use.
type Engine struct {
	config     Config
	limiter    *rateLimiter
	pending    *pendingStore
	otp        *otpStore
	sessions   *sessionStore
	cache      *userCache
	jwtManager *jwt.Manager
	users      UserStore
	mailer     Mailer
	hasher     Hasher
	log        *zap.Logger
}

// InvalidateUser drops the cached snapshot for the identity, forcing the
// next resolve to hit the durable store. The core never mutates users, so
// it never calls this itself; mutation paths added around the engine
// should.
func (e *Engine) InvalidateUser(ctx context.Context, id string) error {
	return e.cache.Delete(ctx, id)
}
