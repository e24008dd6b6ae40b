package veriauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/veriauth/veriauth/jwt"
	"go.uber.org/zap"
)

// Builder assembles an [Engine]. The Redis client, user store, mailer, and
// hasher are mandatory; the logger defaults to a no-op.
type Builder struct {
	config Config
	redis  *redis.Client

	users  UserStore
	mailer Mailer
	hasher Hasher
	log    *zap.Logger

	built bool
}

// New starts a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's config wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis injects the ephemeral-store client. The engine never creates
// its own connection; lifecycle (connect at start, close at shutdown)
// belongs to the caller.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserStore injects the durable credential store.
func (b *Builder) WithUserStore(us UserStore) *Builder {
	b.users = us
	return b
}

// WithMailer injects the mail-delivery collaborator.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithHasher injects the password-hashing collaborator.
func (b *Builder) WithHasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// WithLogger injects a structured logger for flow-level diagnostics.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// Build validates the configuration, pings Redis within
// Config.ConnectTimeout so an unreachable store fails fast at startup, and
// returns the assembled engine. A builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}
	if b.hasher == nil {
		return nil, errors.New("hasher required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.config.ConnectTimeout)
	defer cancel()
	if err := b.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL:     b.config.JWT.AccessTTL,
		RefreshTTL:    b.config.JWT.RefreshTTL,
		AccessSecret:  b.config.JWT.AccessSecret,
		RefreshSecret: b.config.JWT.RefreshSecret,
		Issuer:        b.config.JWT.Issuer,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:     b.config,
		limiter:    newRateLimiter(b.redis, b.config.RateLimit.TTL),
		pending:    newPendingStore(b.redis),
		otp:        newOTPStore(b.redis),
		sessions:   newSessionStore(b.redis),
		cache:      newUserCache(b.redis),
		jwtManager: jm,
		users:      b.users,
		mailer:     b.mailer,
		hasher:     b.hasher,
		log:        b.log,
	}, nil
}
