package veriauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Register runs the first half of the registration flow: validate, gate,
// reject a taken email, then park the hashed account in Redis under a
// fresh verification token and mail the link. No user record is written
// here; creation happens in [Engine.VerifyEmail] once ownership of the
// address is proven. clientAddr is the caller's network address and feeds
// the rate-limit key.
//
// A taken email is reported as [ErrAccountExists]. That reveals account
// existence by policy: the same answer is given here and on the
// verification path, so there is no oracle beyond the documented one.
func (e *Engine) Register(ctx context.Context, in RegisterInput, clientAddr string) error {
	if verr := validateRegister(in); verr != nil {
		return verr
	}

	allowed, err := e.limiter.Allowed(ctx, actionRegister, clientAddr, in.Email)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrRateLimited
	}

	_, err = e.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return ErrAccountExists
	case errors.Is(err, ErrUserNotFound):
	default:
		return err
	}

	hash, err := e.hasher.Hash(in.Password)
	if err != nil {
		return err
	}

	token, err := newVerificationToken(e.config.Verification.TokenBytes)
	if err != nil {
		return err
	}

	rec := pendingRegistration{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := e.pending.Save(ctx, token, rec, e.config.Verification.TTL); err != nil {
		return err
	}

	link := strings.TrimRight(e.config.Verification.LinkBase, "/") + "/" + token
	html, err := renderVerifyEmail(in.Email, link)
	if err != nil {
		return err
	}
	if err := e.mailer.Send(ctx, in.Email, verifySubject, html); err != nil {
		e.log.Warn("verification mail dispatch failed", zap.String("email", in.Email), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrMailFailure, err)
	}

	if err := e.limiter.Arm(ctx, actionRegister, clientAddr, in.Email); err != nil {
		return err
	}

	e.log.Info("registration pending verification", zap.String("email", in.Email))
	return nil
}

// VerifyEmail consumes a verification token and creates the user record.
// The token is deleted before anything else, so it is single-use even when
// the create fails. Duplicate detection is left to the store's unique
// constraint: if the email was taken between registration and
// verification, Create reports [ErrAccountExists] and no record is
// written.
func (e *Engine) VerifyEmail(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrLinkExpired
	}

	rec, err := e.pending.Consume(ctx, token)
	if errors.Is(err, errPendingNotFound) {
		return User{}, ErrLinkExpired
	}
	if err != nil {
		return User{}, err
	}

	user, err := e.users.Create(ctx, CreateUser{
		Name:         rec.Name,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
	})
	if err != nil {
		return User{}, err
	}

	e.log.Info("user created", zap.String("id", user.ID), zap.String("email", user.Email))
	return user.Sanitized(), nil
}
