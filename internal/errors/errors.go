// Package errors defines the error kinds shared by the vault, the stores and the HTTP layer.
// Lower layers wrap a kind with context; handlers map the kind to a status code.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist or is no longer readable.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a write collided with existing data.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks a valid creation token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller doesn't have permission.
	ErrForbidden = errors.New("forbidden")

	// ErrTooManyRequests indicates the caller exceeded its request budget.
	ErrTooManyRequests = errors.New("too many requests")

	// ErrUnavailable indicates a required dependency (entropy source, store, KMS) is not usable.
	// It signals a deployment defect rather than bad input and is never retried.
	ErrUnavailable = errors.New("unavailable")
)

// kinds is the precedence order KindOf checks in.
var kinds = []error{
	ErrNotFound,
	ErrConflict,
	ErrInvalidInput,
	ErrUnauthorized,
	ErrForbidden,
	ErrTooManyRequests,
	ErrUnavailable,
}

// KindOf returns the first sentinel of this package found in err's tree, or nil when err is
// nil or unclassified.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Wrap adds context to err while preserving the chain. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap but formats the context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
