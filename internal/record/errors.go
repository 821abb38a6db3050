package record

import (
	"errors"
	"fmt"
)

// InterceptError represents a fatal failure while recording an
// intercepted invocation.
//
// Intercept errors include:
//   - Environment unavailable: working directory cannot be determined
//   - Configuration missing: the trace-log variable is unset
//   - Resource exhaustion: the record buffer cannot be sized
//   - I/O failure: the trace log cannot be opened, written, or closed
//
// Every class is unrecoverable for the current invocation. The single
// top-level caller turns the error into a non-zero process exit; this
// package never exits by itself.
type InterceptError struct {
	// Code identifies the error category.
	Code InterceptErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the affected file path, when one is known.
	Path string

	// Err is the underlying cause, when any.
	Err error
}

// InterceptErrorCode categorizes intercept errors.
type InterceptErrorCode string

const (
	// ErrCodeEnvironment indicates the working directory could not be
	// determined.
	ErrCodeEnvironment InterceptErrorCode = "ENVIRONMENT_UNAVAILABLE"

	// ErrCodeConfiguration indicates the trace-log variable is unset.
	ErrCodeConfiguration InterceptErrorCode = "CONFIGURATION_MISSING"

	// ErrCodeResource indicates the record buffer capacity could not be
	// computed or allocated.
	ErrCodeResource InterceptErrorCode = "RESOURCE_EXHAUSTED"

	// ErrCodeIO indicates the trace log could not be opened, written,
	// or closed.
	ErrCodeIO InterceptErrorCode = "IO_FAILURE"
)

// Error implements the error interface.
func (e *InterceptError) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s (path=%s): %v", e.Code, e.Message, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *InterceptError) Unwrap() error {
	return e.Err
}

// NewEnvironmentError creates an InterceptError for a failed working
// directory lookup.
func NewEnvironmentError(err error) *InterceptError {
	return &InterceptError{
		Code:    ErrCodeEnvironment,
		Message: "couldn't determine current working directory",
		Err:     err,
	}
}

// NewConfigurationError creates an InterceptError for the unset
// trace-log variable.
func NewConfigurationError() *InterceptError {
	return &InterceptError{
		Code:    ErrCodeConfiguration,
		Message: fmt.Sprintf("environment is not prepared: %s is not set", EnvLog),
	}
}

// NewResourceError creates an InterceptError for a record buffer that
// cannot be sized or allocated.
func NewResourceError(message string) *InterceptError {
	return &InterceptError{
		Code:    ErrCodeResource,
		Message: message,
	}
}

// NewIOError creates an InterceptError for a trace-log I/O failure.
func NewIOError(message, path string, err error) *InterceptError {
	return &InterceptError{
		Code:    ErrCodeIO,
		Message: message,
		Path:    path,
		Err:     err,
	}
}

// IsEnvironmentError returns true if the error is a working-directory
// failure. Uses errors.As to handle wrapped errors.
func IsEnvironmentError(err error) bool {
	return hasCode(err, ErrCodeEnvironment)
}

// IsConfigurationError returns true if the error is a missing-variable
// failure. Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error) bool {
	return hasCode(err, ErrCodeConfiguration)
}

// IsResourceError returns true if the error is a buffer-sizing failure.
// Uses errors.As to handle wrapped errors.
func IsResourceError(err error) bool {
	return hasCode(err, ErrCodeResource)
}

// IsIOError returns true if the error is a trace-log I/O failure.
// Uses errors.As to handle wrapped errors.
func IsIOError(err error) bool {
	return hasCode(err, ErrCodeIO)
}

func hasCode(err error, code InterceptErrorCode) bool {
	var ie *InterceptError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}
