// Package logging provides logging utilities for deskbox.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("starting process", "name", "display-server", "pid", pid)
//	logging.Warn("shutdown timed out", "timeout", timeout)
//
// The sandbox runtimes only ever emit Debug traces. Errors are returned
// to the caller, which decides whether to log them.
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Starting sandbox on %s...", backend)
//	logging.UserSuccess("Sandbox %s ready", id)
//	logging.UserWarning("Sandbox TTL is zero; every call recycles")
//	logging.UserError("Failed to start sandbox: %v", err)
//
// Output destinations (see SetUserOutput):
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
package logging
