// Package common defines shared constants and sentinel errors used across
// client and server layers of ByteChef. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrEmailTaken     = errors.New("email already registered")

	// Client repository precondition: the supplied uid does not match the
	// locally cached current user.
	ErrUserMismatch = errors.New("uid does not match current user")

	// Background sync: the job was scheduled without a uid input.
	// Classified as permanent, never retried.
	ErrMissingUID = errors.New("missing uid")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
