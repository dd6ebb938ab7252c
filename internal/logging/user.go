package logging

import (
	"fmt"
	"io"
	"os"
)

// User-facing output functions with emoji prefixes. They are separate
// from the structured debug logging and go to the writers installed by
// SetUserOutput, os.Stdout and os.Stderr until then.
var (
	userOut io.Writer = os.Stdout
	userErr io.Writer = os.Stderr
)

// SetUserOutput redirects user-facing messages. A nil writer restores
// the matching standard stream.
func SetUserOutput(out, errOut io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	userOut = out
	userErr = errOut
}

// UserInfo prints an info message.
func UserInfo(format string, args ...any) {
	fmt.Fprintf(userOut, "ℹ "+format+"\n", args...)
}

// UserSuccess prints a success message.
func UserSuccess(format string, args ...any) {
	fmt.Fprintf(userOut, "✓ "+format+"\n", args...)
}

// UserWarning prints a warning message to the error stream.
func UserWarning(format string, args ...any) {
	fmt.Fprintf(userErr, "⚠ "+format+"\n", args...)
}

// UserError prints an error message to the error stream.
func UserError(format string, args ...any) {
	fmt.Fprintf(userErr, "✗ "+format+"\n", args...)
}
