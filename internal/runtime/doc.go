// Package runtime manages the lifecycle of a single disposable desktop
// sandbox.
//
// Supported backends:
//   - docker, podman: a container started from a prebuilt image through
//     the engine CLI
//   - native: Xvfb, x11vnc, websockify, and an Xfce session supervised
//     directly on the host
//
// Both implement SandboxRuntime. Use New to build the backend named by a
// config.Config, after resolving the auto kind with Resolve.
//
// # Lifecycle
//
// A backend tracks at most one sandbox. EnsureStarted reuses it while it
// is live and younger than the TTL, recycles it once the TTL has passed,
// and creates it when nothing live is tracked. Destroy is idempotent.
//
// # Command execution
//
// Exec runs a command through bash -lc inside the sandbox. A command
// that exits non-zero is not an error: its output is returned prefixed
// with ErrorMarker. Errors are reserved for missing tooling, failed
// provisioning, and empty commands.
//
// # Mock Runtime
//
// For testing, use NewMockRuntime() to create a mock implementation that
// records calls and returns configured output.
package runtime
