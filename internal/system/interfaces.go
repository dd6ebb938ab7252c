// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"context"
	"io"
	"time"
)

// RunOptions configures a one-shot command.
type RunOptions struct {
	Env   []string  // Full environment; nil inherits the host environment
	Dir   string    // Working directory
	Stdin io.Reader // Standard input
}

// Result holds the captured outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandExecutor abstracts one-shot command execution for testability.
type CommandExecutor interface {
	// LookPath searches for an executable named file on the search path.
	LookPath(file string) (string, error)

	// Run executes a command to completion, capturing stdout and stderr
	// separately. A non-zero exit is reported through Result.ExitCode with
	// a nil error; the error is reserved for commands that could not run.
	Run(ctx context.Context, opts RunOptions, name string, args ...string) (*Result, error)
}

// ProcessSpec describes a long-running supervised process.
type ProcessSpec struct {
	Name   string    // Logical name, used in errors and logs
	Path   string    // Resolved executable
	Args   []string  // Arguments, excluding argv[0]
	Env    []string  // Full environment
	Dir    string    // Working directory
	Output io.Writer // Receives both stdout and stderr
}

// Process is a handle on a started process.
type Process interface {
	// Pid returns the OS process id.
	Pid() int

	// Exited polls without blocking.
	Exited() bool

	// Terminate requests a graceful shutdown of the process group.
	Terminate() error

	// Kill forcibly stops the process group.
	Kill() error

	// Wait blocks until the process exits or timeout elapses, and
	// reports whether it exited.
	Wait(timeout time.Duration) bool
}

// ProcessStarter launches supervised processes.
type ProcessStarter interface {
	Start(spec ProcessSpec) (Process, error)
}

// Default instances using real OS operations.
var (
	defaultExecutor CommandExecutor = &osExecutor{}
	defaultStarter  ProcessStarter  = &osStarter{}
)

// DefaultExecutor returns the default CommandExecutor implementation.
func DefaultExecutor() CommandExecutor {
	return defaultExecutor
}

// DefaultStarter returns the default ProcessStarter implementation.
func DefaultStarter() ProcessStarter {
	return defaultStarter
}
