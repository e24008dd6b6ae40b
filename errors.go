package veriauth

import "errors"

var (
	// ErrRateLimited is returned while the boolean rate-limit flag for the
	// (action, client, email) triple is still live.
	ErrRateLimited = errors.New("too many requests, try again later")
	// ErrAccountExists is returned when the email is already registered,
	// both at registration time and when a verification loses the create
	// race.
	ErrAccountExists = errors.New("user already exists")
	// ErrLinkExpired is returned for an absent, expired, or already
	// consumed verification token.
	ErrLinkExpired = errors.New("verification link is expired")
	// ErrInvalidCredentials covers both an unknown email and a password
	// mismatch; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrOTPExpired is returned when no OTP challenge is live for the
	// email, including after a successful (consuming) verification.
	ErrOTPExpired = errors.New("otp expired")
	// ErrOTPInvalid is returned on a code mismatch. The challenge is kept,
	// so the caller may retry until it expires naturally.
	ErrOTPInvalid = errors.New("invalid otp")
	// ErrUnauthenticated is returned when no access token was presented.
	ErrUnauthenticated = errors.New("please login - no token")
	// ErrTokenInvalid is returned for a token that fails signature or
	// expiry checks.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrSessionRevoked is returned for a signature-valid refresh token
	// with no matching validity record in the ephemeral store.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrUserNotFound is returned when the durable store has no record for
	// the requested identity or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreUnavailable wraps ephemeral-store failures.
	ErrStoreUnavailable = errors.New("ephemeral store unavailable")
	// ErrMailFailure wraps mail-delivery failures.
	ErrMailFailure = errors.New("mail delivery failed")
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every failed field of a request, not just the
// first. Error returns the first message as the human-readable summary.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
