package veriauth

import "context"

// User is the durable account record held by the [UserStore]. PasswordHash
// is never serialized to clients; stores may omit it from projections that
// do not need it.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Sanitized returns a copy of the user with the password hash cleared.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// RegisterInput is the raw registration request before validation.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the raw login request before validation.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionPair holds the two bearer credentials minted on successful OTP
// verification. The refresh token's validity is additionally recorded in
// Redis; possession of a signature-valid refresh token is not sufficient
// once that record is gone.
type SessionPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by [Engine.VerifyOTP]: the sanitized user plus the
// freshly issued session pair.
type AuthResult struct {
	User    User
	Session SessionPair
}

// CreateUser is the input to [UserStore.Create].
type CreateUser struct {
	Name         string
	Email        string
	PasswordHash string
}

// UserStore is the durable credential store. Implementations must treat
// email as a unique key and report a conflicting create with
// [ErrAccountExists]; the registration flow relies on that rather than a
// separate existence check, so the uniqueness guarantee has to be enforced
// at write time.
//
// GetByEmail includes the password hash; GetByID must omit it. Both return
// [ErrUserNotFound] when no record matches.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, in CreateUser) (User, error)
}

// Mailer delivers a single HTML mail. A returned error fails the enclosing
// flow; nothing in this package retries delivery.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Hasher is the password-hashing collaborator. Implementations must be
// slow, salted, one-way schemes; see the password subpackage for the
// bcrypt default.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}
