package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrStoreUnavailable   = errors.New("credential store unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")

	// ErrTokenExpired is returned for a well-formed, correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken covers tampered and malformed tokens alike.
	ErrInvalidToken = errors.New("invalid token")
)
