package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the import pipeline. Handlers map these to HTTP
// statuses; everything else is treated as internal.
var (
	ErrNotFound = errors.New("not found")
	ErrBadInput = errors.New("bad input")
	ErrConflict = errors.New("conflict")
	ErrInternal = errors.New("internal error")
)

// NotFound wraps ErrNotFound with a human-readable subject.
func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

// BadInput wraps ErrBadInput with the underlying cause.
func BadInput(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", msg, ErrBadInput)
	}
	return fmt.Errorf("%s: %v: %w", msg, err, ErrBadInput)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsBadInput reports whether err wraps ErrBadInput.
func IsBadInput(err error) bool {
	return errors.Is(err, ErrBadInput)
}
