package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/veriauth/veriauth"
	authmw "github.com/veriauth/veriauth/middleware"
)

type handlers struct {
	engine        *veriauth.Engine
	config        veriauth.Config
	log           *zap.Logger
	secureCookies bool
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var in veriauth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if err := h.engine.Register(r.Context(), in, clientIP(r)); err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{
		"message": "A verification link has been sent to your email. It will expire in 5 minutes",
	})
}

func (h *handlers) verifyEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.engine.VerifyEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]any{
		"message": "Email verified successfully! Your account has been created",
		"user":    user,
	})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var in veriauth.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if err := h.engine.Login(r.Context(), in, clientIP(r)); err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{
		"message": "An otp has been sent to your email. It will expire in 5 minutes",
	})
}

func (h *handlers) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	result, err := h.engine.VerifyOTP(r.Context(), in.Email, in.OTP)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.setSessionCookies(w, result.Session)
	respond(w, http.StatusOK, map[string]any{
		"message": "Welcome " + result.User.Name,
		"user":    result.User,
		"session": result.Session,
	})
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie("refreshToken"); err == nil {
		token = c.Value
	}
	pair, err := h.engine.Refresh(r.Context(), token)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.setSessionCookies(w, pair)
	respond(w, http.StatusOK, map[string]any{"session": pair})
}

func (h *handlers) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := authmw.UserFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"message": veriauth.ErrUnauthenticated.Error()})
		return
	}
	respond(w, http.StatusOK, user)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	user, ok := authmw.UserFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"message": veriauth.ErrUnauthenticated.Error()})
		return
	}
	if err := h.engine.Logout(r.Context(), user.ID); err != nil {
		h.respondError(w, err)
		return
	}
	h.clearSessionCookies(w)
	respond(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *handlers) setSessionCookies(w http.ResponseWriter, pair veriauth.SessionPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    pair.AccessToken,
		MaxAge:   int(h.config.JWT.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    pair.RefreshToken,
		MaxAge:   int(h.config.JWT.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

func (h *handlers) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteStrictMode,
			Path:     "/",
		})
	}
}

// respondError converts a flow error into the structured response and
// status the API contract promises. Anything unrecognized surfaces as a
// 500 with the raw message.
func (h *handlers) respondError(w http.ResponseWriter, err error) {
	if ve, ok := veriauth.AsValidationError(err); ok {
		respond(w, http.StatusBadRequest, map[string]any{
			"message": ve.Error(),
			"error":   ve.Fields,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, veriauth.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, veriauth.ErrAccountExists),
		errors.Is(err, veriauth.ErrLinkExpired),
		errors.Is(err, veriauth.ErrInvalidCredentials),
		errors.Is(err, veriauth.ErrOTPExpired),
		errors.Is(err, veriauth.ErrOTPInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, veriauth.ErrUnauthenticated),
		errors.Is(err, veriauth.ErrTokenInvalid),
		errors.Is(err, veriauth.ErrSessionRevoked):
		status = http.StatusUnauthorized
	case errors.Is(err, veriauth.ErrUserNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	respond(w, status, map[string]string{"message": err.Error()})
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
