// Package veriauth implements an email-verified registration and OTP-login
// workflow on top of Redis-backed ephemeral state.
//
// The engine coordinates a durable user store (see [UserStore]) with a
// transient key-value store carrying per-key TTLs. Registration is gated by
// proof of email ownership: the submitted account is parked in Redis under a
// single-use verification token and only written to the user store when the
// emailed link is followed. Login is gated by a mailed six-digit one-time
// passcode; a successful OTP check issues a short-lived access token and a
// long-lived refresh token whose validity is recorded in Redis as the
// revocation source of truth. Authenticated reads resolve the user through a
// cache-aside snapshot with a bounded staleness window.
//
// External collaborators (password hashing, mail delivery, the user store)
// are consumed through narrow interfaces declared in this package; default
// implementations live in the password, mail, and postgres subpackages.
package veriauth
