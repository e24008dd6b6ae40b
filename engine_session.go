package veriauth

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// issueSession mints the access/refresh pair and records the refresh
// token's validity under refresh:<id> with a matching TTL.
func (e *Engine) issueSession(ctx context.Context, id string) (SessionPair, error) {
	access, err := e.jwtManager.CreateAccess(id)
	if err != nil {
		return SessionPair{}, err
	}
	refresh, err := e.jwtManager.CreateRefresh(id)
	if err != nil {
		return SessionPair{}, err
	}
	if err := e.sessions.SaveRefresh(ctx, id, refresh, e.config.JWT.RefreshTTL); err != nil {
		return SessionPair{}, err
	}
	return SessionPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Resolve verifies an access token and returns the user it identifies,
// reading through the cache-aside snapshot. A cache hit never touches the
// durable store; a miss loads the record (without its password hash) and
// populates the snapshot for Config.Cache.UserTTL. Records mutated out of
// band may be served stale for up to that window; see
// [Engine.InvalidateUser].
func (e *Engine) Resolve(ctx context.Context, accessToken string) (User, error) {
	if accessToken == "" {
		return User{}, ErrUnauthenticated
	}

	claims, err := e.jwtManager.ParseAccess(accessToken)
	if err != nil {
		return User{}, ErrTokenInvalid
	}

	if cached, err := e.cache.Get(ctx, claims.ID); err == nil {
		return cached, nil
	} else if !errors.Is(err, errCacheMiss) {
		return User{}, err
	}

	user, err := e.users.GetByID(ctx, claims.ID)
	if err != nil {
		return User{}, err
	}
	user = user.Sanitized()

	if err := e.cache.Save(ctx, user, e.config.Cache.UserTTL); err != nil {
		return User{}, err
	}
	return user, nil
}

// Refresh exchanges a refresh token for a fresh session pair. Beyond the
// signature check, the presented token must match the recorded value at
// refresh:<id>; an absent or different record means the session was
// revoked or already rotated, and the exchange is refused. A successful
// exchange rotates the pair, which invalidates the presented token.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (SessionPair, error) {
	if refreshToken == "" {
		return SessionPair{}, ErrUnauthenticated
	}

	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		return SessionPair{}, ErrTokenInvalid
	}

	stored, err := e.sessions.GetRefresh(ctx, claims.ID)
	if errors.Is(err, errRefreshNotFound) {
		return SessionPair{}, ErrSessionRevoked
	}
	if err != nil {
		return SessionPair{}, err
	}
	if stored != refreshToken {
		e.log.Warn("refresh token does not match recorded session", zap.String("id", claims.ID))
		return SessionPair{}, ErrSessionRevoked
	}

	return e.issueSession(ctx, claims.ID)
}

// Logout revokes the identity's session by deleting the refresh record,
// and drops the cached user snapshot. Outstanding access tokens stay
// verifiable until their short expiry; the refresh path is dead
// immediately.
func (e *Engine) Logout(ctx context.Context, id string) error {
	if err := e.sessions.DeleteRefresh(ctx, id); err != nil {
		return err
	}
	return e.cache.Delete(ctx, id)
}
