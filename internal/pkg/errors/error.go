package xerrors

import (
	"errors"
	"fmt"
)

// Common reusable application errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict: resource already exists")
	ErrInternal       = errors.New("internal server error")
	ErrRateLimited    = errors.New("too many requests")
	ErrSessionExpired = errors.New("session expired or invalid")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Auth error kinds surfaced by the client gateway and session store.
var (
	ErrValidation = errors.New("validation error")
	ErrRejected   = errors.New("remote rejection")
	ErrTransport  = errors.New("transport failure")
	ErrStorage    = errors.New("storage fault")
	ErrBusy       = errors.New("request already in progress")
	ErrSuperseded = errors.New("superseded by a newer session change")
)

// AuthError carries the single user-facing message for a failed auth attempt
// together with its kind. Error() returns only the message.
type AuthError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "authentication failed"
}

// Is reports kind equality so callers can use errors.Is(err, ErrTransport).
func (e *AuthError) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError builds an AuthError of the given kind.
func NewAuthError(kind error, message string, cause error) *AuthError {
	return &AuthError{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the auth kind carried by err, or nil.
func KindOf(err error) error {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return nil
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
