// Package middleware guards net/http routes with the engine's session
// validator.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/veriauth/veriauth"
)

type userContextKey struct{}

// UserFromContext returns the resolved user stashed by [Auth].
func UserFromContext(ctx context.Context) (veriauth.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(veriauth.User)
	return u, ok
}

// Auth resolves the request's access token — the accessToken cookie or an
// Authorization bearer header — to a user and stashes it in the request
// context. Missing or bad tokens end the request with 401, an identity
// with no backing record with 404.
func Auth(engine *veriauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := engine.Resolve(r.Context(), accessToken(r))
			if err != nil {
				status := http.StatusInternalServerError
				switch {
				case errors.Is(err, veriauth.ErrUnauthenticated), errors.Is(err, veriauth.ErrTokenInvalid):
					status = http.StatusUnauthorized
				case errors.Is(err, veriauth.ErrUserNotFound):
					status = http.StatusNotFound
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request) string {
	if c, err := r.Cookie("accessToken"); err == nil && c.Value != "" {
		return c.Value
	}
	const bearer = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearer) {
		return h[len(bearer):]
	}
	return ""
}
