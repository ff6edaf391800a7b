//nolint:revive // Package name matches the package it tests
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	assert.NotEqual(t, ErrValidation, ErrConfig)
	assert.NotEqual(t, ErrValidation, ErrTemplate)
	assert.NotEqual(t, ErrTemplate, ErrIO)
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "template error",
		Message:  "invalid character '}'",
		Location: "package.json",
		Hint:     "Fix the template",
	}

	output := detail.Error()

	assert.Contains(t, output, "Error: template error")
	assert.Contains(t, output, "Location: package.json")
	assert.Contains(t, output, "invalid character '}'")
	assert.Contains(t, output, "Hint: Fix the template")
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{
		Type:    "test",
		Message: "test message",
		Cause:   ErrValidation,
	}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("organization name is empty", "--user", "Pass an organization, e.g. --user my-org")

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrConfig))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "invalid configuration", detail.Type)
	assert.Equal(t, "--user", detail.Location)
}

func TestNewTemplateError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := NewTemplateError("package.json", cause)

	assert.True(t, errors.Is(err, ErrTemplate))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "package.json")
}

func TestNewIOError(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewIOError("write", "/tmp/out/foo.js", cause)

	assert.True(t, errors.Is(err, ErrIO))
	assert.Contains(t, err.Error(), "write failed")
	assert.Contains(t, err.Error(), "/tmp/out/foo.js")
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrValidation, "bad stability")

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Contains(t, wrapped.Error(), "bad stability")
}

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"nil error returns success", nil, ExitSuccess},
		{"validation error", ErrValidation, ExitValidationError},
		{"config error", NewConfigError("bad", "", ""), ExitValidationError},
		{"template error", NewTemplateError("a.json", errors.New("x")), ExitValidationError},
		{"io error", NewIOError("write", "a", errors.New("x")), ExitGeneralError},
		{"explicit exit error", NewExitError(errors.New("x"), 7), 7},
		{"wrapped exit error", fmt.Errorf("outer: %w", NewExitError(ErrIO, 3)), 3},
		{"unknown error returns general error", errors.New("unknown"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, ExitCodeFromError(tt.err))
		})
	}
}
