package videos

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrVideoNotFound = errors.New("video not found")
	ErrSceneNotFound = errors.New("scene not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrVideoBusy     = errors.New("video is being processed")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with identifier %v not found", e.Resource, e.ID)
}

func (e NotFoundError) Is(target error) bool {
	if e.Resource == "scene" {
		return target == ErrSceneNotFound
	}
	return target == ErrVideoNotFound
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
func NewNotFoundError(resource string, id interface{}) error {
	return NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var notFoundErr NotFoundError
	return errors.As(err, &notFoundErr) ||
		errors.Is(err, ErrVideoNotFound) ||
		errors.Is(err, ErrSceneNotFound)
}
