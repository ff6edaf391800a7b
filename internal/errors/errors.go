// Package errors provides sentinel errors and exit codes for modinit.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates invalid user input (answers, flag values).
	ErrValidation = errors.New("validation error")

	// ErrConfig indicates a configuration problem detected before emission.
	ErrConfig = errors.New("configuration error")

	// ErrTemplate indicates a template-authoring defect, such as a JSON
	// template that does not parse after rendering.
	ErrTemplate = errors.New("template error")

	// ErrIO indicates a filesystem read, mkdir, or write failure.
	ErrIO = errors.New("i/o error")
)

// DetailError captures structured error information for display.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file path the error relates to (optional).
	Location string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, hint string) error {
	return &DetailError{
		Type:    "validation failed",
		Message: message,
		Hint:    hint,
		Cause:   ErrValidation,
	}
}

// NewConfigError creates a configuration error with details.
func NewConfigError(message, location, hint string) error {
	return &DetailError{
		Type:     "invalid configuration",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrConfig,
	}
}

// NewTemplateError creates a template error for the given template path.
func NewTemplateError(location string, cause error) error {
	return &DetailError{
		Type:     "template error",
		Message:  cause.Error(),
		Location: location,
		Hint:     "Fix the template so it renders to valid output.",
		Cause:    fmt.Errorf("%w: %w", ErrTemplate, cause),
	}
}

// NewIOError creates an I/O error naming the failing step and path.
func NewIOError(step, location string, cause error) error {
	return &DetailError{
		Type:     step + " failed",
		Message:  cause.Error(),
		Location: location,
		Cause:    fmt.Errorf("%w: %w", ErrIO, cause),
	}
}

// Wrap wraps an error with a sentinel error type.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}
