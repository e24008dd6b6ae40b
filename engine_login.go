package veriauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Login runs the credential check and, on success, parks a six-digit OTP
// challenge under the email and mails it. No session is issued here; that
// happens in [Engine.VerifyOTP]. An unknown email and a wrong password
// produce the identical [ErrInvalidCredentials], so this response alone
// does not reveal whether the account exists.
func (e *Engine) Login(ctx context.Context, in LoginInput, clientAddr string) error {
	if verr := validateLogin(in); verr != nil {
		return verr
	}

	allowed, err := e.limiter.Allowed(ctx, actionLogin, clientAddr, in.Email)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrRateLimited
	}

	user, err := e.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}

	ok, err := e.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	code, err := newOTPCode()
	if err != nil {
		return err
	}
	// Set supersedes any unexpired challenge at this key.
	if err := e.otp.Save(ctx, in.Email, code, e.config.OTP.TTL); err != nil {
		return err
	}

	html, err := renderOTPEmail(in.Email, code)
	if err != nil {
		return err
	}
	if err := e.mailer.Send(ctx, in.Email, otpSubject, html); err != nil {
		e.log.Warn("otp mail dispatch failed", zap.String("email", in.Email), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrMailFailure, err)
	}

	if err := e.limiter.Arm(ctx, actionLogin, clientAddr, in.Email); err != nil {
		return err
	}

	e.log.Info("otp challenge issued", zap.String("email", in.Email))
	return nil
}

// VerifyOTP checks the submitted code against the live challenge. A
// mismatch keeps the challenge so the caller may retry until its natural
// expiry; a match consumes it, re-fetches the user, and issues the session
// pair. Replaying a consumed code therefore reports [ErrOTPExpired], not
// [ErrOTPInvalid].
func (e *Engine) VerifyOTP(ctx context.Context, email, code string) (AuthResult, error) {
	var missing []FieldError
	if email == "" {
		missing = append(missing, FieldError{Field: "email", Message: "Please provide all details"})
	}
	if strings.TrimSpace(code) == "" {
		missing = append(missing, FieldError{Field: "otp", Message: "Please provide all details"})
	}
	if len(missing) > 0 {
		return AuthResult{}, &ValidationError{Fields: missing}
	}

	stored, err := e.otp.Get(ctx, email)
	if errors.Is(err, errOTPNotFound) {
		return AuthResult{}, ErrOTPExpired
	}
	if err != nil {
		return AuthResult{}, err
	}

	if stored != strings.TrimSpace(code) {
		return AuthResult{}, ErrOTPInvalid
	}

	if err := e.otp.Delete(ctx, email); err != nil {
		return AuthResult{}, err
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, err
	}

	pair, err := e.issueSession(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	e.log.Info("session issued", zap.String("id", user.ID))
	return AuthResult{User: user.Sanitized(), Session: pair}, nil
}
