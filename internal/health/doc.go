// Package health provides prerequisite and status checks for sandboxes.
//
// # Prerequisite Checks
//
// Before a backend can provision anything its host tooling must exist:
//
//	report := health.Run(ctx, health.CheckOptions{Native: false})
//	// container mode: <engine> on PATH and "<engine> info" succeeds
//
//	report := health.Run(ctx, health.CheckOptions{Native: true})
//	// native mode: Xvfb, x11vnc, websockify, and a desktop session manager
//
// Report.OK reports whether every check passed.
//
// # Health Status
//
// Sandbox health is derived from a runtime.SandboxInfo snapshot:
//
//	StatusHealthy   - Sandbox live and every process healthy
//	StatusUnhealthy - Sandbox tracked but not (fully) running
//	StatusStopped   - No sandbox tracked
package health
