// Package errors provides shared error types for input and lookup failures
// that happen outside the wire protocol.
package errors

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a wiki object the caller asked for does not exist.
type NotFoundError struct {
	Kind string // "file", "sheet", "tile"
	Name string // title, mod abbreviation or id
}

func (e *NotFoundError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s not found on wiki: %s", e.Kind, e.Name)
	}
	return fmt.Sprintf("not found on wiki: %s", e.Name)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// ValidationError indicates invalid configuration or arguments.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (empty for secrets)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
