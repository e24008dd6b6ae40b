package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that fails parsing, signature
// verification, or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Config configures the token pair. Access and refresh tokens are signed
// with independent HS256 secrets so that one cannot stand in for the other.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
}

// Claims is the payload carried by both token kinds: the user identity
// plus the registered claim set.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Manager mints and parses the access/refresh token pair.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a ready manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("jwt: TTLs must be positive")
	}
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("jwt: access secret required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("jwt: refresh secret required")
	}
	return &Manager{config: cfg}, nil
}

// CreateAccess signs a short-lived access token for id.
func (m *Manager) CreateAccess(id string) (string, error) {
	return m.create(id, m.config.AccessTTL, m.config.AccessSecret)
}

// CreateRefresh signs a long-lived refresh token for id.
func (m *Manager) CreateRefresh(id string) (string, error) {
	return m.create(id, m.config.RefreshTTL, m.config.RefreshSecret)
}

func (m *Manager) create(id string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		ID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti makes every mint unique; without it two tokens for the
			// same identity within the same second are byte-identical and
			// rotation cannot distinguish old from new.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccess verifies an access token and returns its claims.
func (m *Manager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, m.config.AccessSecret)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (m *Manager) ParseRefresh(token string) (*Claims, error) {
	return m.parse(token, m.config.RefreshSecret)
}

func (m *Manager) parse(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
