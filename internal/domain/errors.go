package domain

import (
	"context"
	"errors"
	"strings"
)

// Error kinds. Adapters wrap these with %w; handlers map them to status
// codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInternal           = errors.New("internal error")
)

// ValidationError lists every problem found in a request body.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(problems ...string) error {
	return &ValidationError{Problems: problems}
}

// Kind reduces any error to one of the four kinds. A deadline the store did
// not meet counts as unavailable; other unclassified errors are Internal.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrValidation):
		return ErrValidation
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, context.DeadlineExceeded):
		return ErrStorageUnavailable
	default:
		return ErrInternal
	}
}
