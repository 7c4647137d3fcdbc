package images

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrImageNotFound = errors.New("image not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrImageBusy     = errors.New("image is being processed")
)

// NotFoundError represents an error when an image is not found
type NotFoundError struct {
	ID interface{}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("image with identifier %v not found", e.ID)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrImageNotFound
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(id interface{}) error {
	return NotFoundError{ID: id}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFoundErr NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrImageNotFound)
}
