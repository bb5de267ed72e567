package common

import "errors"

// Outcomes of the credential core. Nothing else is allowed to cross the
// service boundary; callers should match with errors.Is.
var (
	// ErrMissingCredentials is returned when username or password is empty.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrUsernameExists is returned by registration on a username conflict.
	ErrUsernameExists = errors.New("username exists")

	// ErrAuthenticationFailed covers wrong password, unknown username and
	// tampered or corrupted key material alike.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrStorageFailure is an opaque persistence error.
	ErrStorageFailure = errors.New("storage failure")
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
