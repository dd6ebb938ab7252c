// Package errors provides typed errors with exit codes for deskbox.
//
// # Error Types
//
// SandboxError is the base error type that wraps an error with a code:
//
//	type SandboxError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Error Kinds
//
// The lifecycle manager raises exactly three kinds:
//
//	ExitInvalidArgument    = 2  // Empty or whitespace-only command
//	ExitRuntimeUnavailable = 3  // Required tooling missing or unreachable
//	ExitExecutionFailure   = 4  // A control-plane command failed
//
// ExitConfigError (5) is reserved for configuration loading.
//
// A user command that exits non-zero inside a live sandbox is not an
// error of the manager. It is returned as output prefixed with an error
// marker (see the runtime package).
//
// # Matching
//
// Sentinels match any SandboxError with the same code:
//
//	if errors.Is(err, errors.ErrRuntimeUnavailable) {
//	    ...
//	}
//
// Use GetExitCode for process exit codes and HTTPStatus for transport
// status codes.
package errors
