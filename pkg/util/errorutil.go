package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

// NewConflict reports a uniqueness violation caused by err.
func NewConflict(message string, err error) *DomainError {
	return &DomainError{Code: "CONFLICT", Message: message, HTTPStatus: http.StatusConflict, Err: err}
}

// NewInternalError hides err from clients; it is kept for logging only.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic and domain sentinel errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return &DomainError{Code: "TOKEN_EXPIRED", Message: "Token expired", HTTPStatus: http.StatusUnauthorized, Err: err}
	case errors.Is(err, domain.ErrInvalidToken):
		return &DomainError{Code: "INVALID_TOKEN", Message: "Invalid token", HTTPStatus: http.StatusUnauthorized, Err: err}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &DomainError{Code: "INVALID_CREDENTIALS", Message: "Invalid credentials", HTTPStatus: http.StatusBadRequest, Err: err}
	case errors.Is(err, domain.ErrUsernameTaken):
		return NewConflict("Username already exists", err)
	case errors.Is(err, domain.ErrPasswordTooLong):
		return &DomainError{Code: "VALIDATION_FAILED", Message: "password must be at most 72 bytes", HTTPStatus: http.StatusBadRequest, Err: err}
	case errors.Is(err, domain.ErrValidation):
		return &DomainError{Code: "VALIDATION_FAILED", Message: err.Error(), HTTPStatus: http.StatusBadRequest, Err: err}
	case errors.Is(err, domain.ErrTooManyAttempts):
		return &DomainError{Code: "TOO_MANY_ATTEMPTS", Message: "Too many failed login attempts", HTTPStatus: http.StatusTooManyRequests, Err: err}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return &DomainError{Code: "STORE_UNAVAILABLE", Message: "internal server error", HTTPStatus: http.StatusInternalServerError, Err: err}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return &DomainError{Code: codeForStatus(fiberErr.Code), Message: fiberErr.Message, HTTPStatus: fiberErr.Code}
	}

	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestTimeout:
		return "TIMEOUT"
	}
	if status >= http.StatusInternalServerError {
		return "INTERNAL_ERROR"
	}
	return "REQUEST_FAILED"
}
