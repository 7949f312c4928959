// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is / errors.As to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Token errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrRefreshTokenMissing = errors.New("refresh token not found in cookies")
)

// ConflictError reports a unique constraint violation on Field.
// It unwraps to ErrorAlreadyExists.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return e.Field + " already exists"
}

func (e *ConflictError) Unwrap() error { return ErrorAlreadyExists }

// AuthenticationFailedError is returned when credentials are missing or wrong.
// Detail is safe to show to the client.
type AuthenticationFailedError struct {
	Detail string
}

func (e *AuthenticationFailedError) Error() string { return e.Detail }

func (e *AuthenticationFailedError) Unwrap() error { return ErrorUnauthorized }

// NewAuthenticationFailed returns an AuthenticationFailedError with the given detail.
func NewAuthenticationFailed(detail string) error {
	return &AuthenticationFailedError{Detail: detail}
}

// NotFoundError is a not-found condition with a client-facing Detail.
// It unwraps to ErrorNotFound.
type NotFoundError struct {
	Detail string
}

func (e *NotFoundError) Error() string { return e.Detail }

func (e *NotFoundError) Unwrap() error { return ErrorNotFound }
