package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned by stores on unique-constraint conflicts.
var ErrAlreadyExists = errors.New("already exists")

// ValidationError rejects malformed input before any store call is made.
// A ValidationError is never a partial application: nothing has been written.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
