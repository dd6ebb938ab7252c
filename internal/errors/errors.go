package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Exit codes for deskbox
const (
	ExitSuccess            = 0
	ExitGeneralError       = 1
	ExitInvalidArgument    = 2
	ExitRuntimeUnavailable = 3
	ExitExecutionFailure   = 4
	ExitConfigError        = 5
)

// SandboxError is the base error type for deskbox
type SandboxError struct {
	Code    int
	Message string
	Cause   error
}

func (e *SandboxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SandboxError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a SandboxError of the same kind.
func (e *SandboxError) Is(target error) bool {
	t, ok := target.(*SandboxError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ExitCode returns the exit code for this error
func (e *SandboxError) ExitCode() int {
	return e.Code
}

// Sentinels for errors.Is. They match by code, not by message.
var (
	ErrInvalidArgument    = New(ExitInvalidArgument, "invalid argument")
	ErrRuntimeUnavailable = New(ExitRuntimeUnavailable, "sandbox runtime unavailable")
	ErrExecutionFailure   = New(ExitExecutionFailure, "sandbox command failed")
	ErrConfig             = New(ExitConfigError, "configuration error")
)

// New creates a new SandboxError
func New(code int, message string) *SandboxError {
	return &SandboxError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a SandboxError
func Wrap(code int, message string, cause error) *SandboxError {
	return &SandboxError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// InvalidArgument returns an error for a caller-supplied value that cannot be used
func InvalidArgument(message string) *SandboxError {
	return New(ExitInvalidArgument, message)
}

// RuntimeUnavailable returns an error for missing or unreachable tooling
func RuntimeUnavailable(message string, cause error) *SandboxError {
	return Wrap(ExitRuntimeUnavailable, message, cause)
}

// ExecutionFailure returns an error for a failed control-plane command
func ExecutionFailure(message string, cause error) *SandboxError {
	return Wrap(ExitExecutionFailure, message, cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *SandboxError {
	return Wrap(ExitConfigError, message, cause)
}

// IsInvalidArgument reports whether err is an InvalidArgument error
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsRuntimeUnavailable reports whether err is a RuntimeUnavailable error
func IsRuntimeUnavailable(err error) bool {
	return errors.Is(err, ErrRuntimeUnavailable)
}

// IsExecutionFailure reports whether err is an ExecutionFailure error
func IsExecutionFailure(err error) bool {
	return errors.Is(err, ErrExecutionFailure)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var sbErr *SandboxError
	if errors.As(err, &sbErr) {
		return sbErr.ExitCode()
	}
	return ExitGeneralError
}

// HTTPStatus maps an error to the transport status the API reports.
func HTTPStatus(err error) int {
	switch GetExitCode(err) {
	case ExitInvalidArgument:
		return http.StatusBadRequest
	case ExitRuntimeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
