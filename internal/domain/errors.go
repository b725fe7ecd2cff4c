package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSignatureOrder    = fmt.Errorf("%w: tenant must sign before owner", ErrInvalidTransition)
	ErrKYCRequired       = errors.New("kyc verification required")
	ErrInvalidOTP        = errors.New("invalid or expired verification code")
	ErrExternal          = errors.New("external service failure")
	ErrAlreadyExists     = errors.New("already exists")
)

// TransitionError reports a rejected (status, event) pair.
type TransitionError struct {
	Entity string
	From   string
	Event  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot apply %q to %s in status %s", ErrInvalidTransition, e.Event, e.Entity, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NotFound wraps ErrNotFound with the entity name and id.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

// Invalid wraps ErrValidation with a reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
