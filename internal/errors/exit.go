package errors

import "errors"

// Exit codes returned by the modinit binary.
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitValidationError = 2
)

// ExitError carries a process exit code alongside the error.
type ExitError struct {
	// Code is the process exit code.
	Code int

	// Err is the underlying error.
	Err error

	// Printed reports whether the error was already shown to the user.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError wraps err with the given exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// ExitCodeFromError maps an error to an exit code using the sentinels.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfig), errors.Is(err, ErrTemplate):
		return ExitValidationError
	default:
		return ExitGeneralError
	}
}
