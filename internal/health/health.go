package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firefly-engineering/deskbox/internal/runtime"
	"github.com/firefly-engineering/deskbox/internal/system"
)

// Status represents the health status of a sandbox
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusStopped   Status = "stopped"
)

// Check is the outcome of one prerequisite probe
type Check struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OK          bool   `json:"ok"`
	Detail      string `json:"detail,omitempty"`
}

// Report collects prerequisite checks for one backend
type Report struct {
	Mode   string  `json:"mode"`
	Checks []Check `json:"checks"`
}

// OK reports whether every check passed
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Missing returns the names of failed checks
func (r *Report) Missing() []string {
	var names []string
	for _, c := range r.Checks {
		if !c.OK {
			names = append(names, c.Name)
		}
	}
	return names
}

type tool struct {
	name        string
	description string
}

var nativeTools = []tool{
	{"Xvfb", "Xvfb provides the virtual display for the native sandbox runtime."},
	{"x11vnc", "x11vnc shares the X display so the web client can connect."},
	{"websockify", "websockify bridges VNC to WebSockets and serves the web client."},
}

var sessionManagers = []string{"startxfce4", "xfce4-session"}

// CheckOptions holds options for prerequisite checking.
type CheckOptions struct {
	// Native checks the host desktop toolchain instead of a container engine
	Native bool

	// Engine is the container CLI to probe (default docker)
	Engine string

	Executor system.CommandExecutor
}

// Run performs the prerequisite checks selected by opts
func Run(ctx context.Context, opts CheckOptions) *Report {
	exec := opts.Executor
	if exec == nil {
		exec = system.DefaultExecutor()
	}

	if opts.Native {
		return CheckNative(exec)
	}

	engine := opts.Engine
	if engine == "" {
		engine = "docker"
	}
	return CheckContainer(ctx, exec, engine)
}

// CheckContainer verifies the engine CLI is installed and its daemon answers
func CheckContainer(ctx context.Context, exec system.CommandExecutor, engine string) *Report {
	report := &Report{Mode: engine}

	_, err := exec.LookPath(engine)
	report.Checks = append(report.Checks, Check{
		Name:        engine,
		Description: fmt.Sprintf("The %s CLI is required for the containerized sandbox runtime.", engine),
		OK:          err == nil,
	})

	ok, detail := CheckDaemon(ctx, exec, engine)
	report.Checks = append(report.Checks, Check{
		Name:        engine + " daemon",
		Description: fmt.Sprintf("%s info must succeed so containers can be started.", engine),
		OK:          ok,
		Detail:      detail,
	})
	return report
}

// CheckDaemon runs "<engine> info" and reports whether the daemon is
// reachable, with the engine's own diagnostic on failure.
func CheckDaemon(ctx context.Context, exec system.CommandExecutor, engine string) (bool, string) {
	if _, err := exec.LookPath(engine); err != nil {
		return false, fmt.Sprintf("%s CLI not found on PATH.", engine)
	}

	res, err := exec.Run(ctx, system.RunOptions{}, engine, "info")
	if err != nil {
		return false, fmt.Sprintf("%s CLI not executable: %v", engine, err)
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(res.Stdout)
		}
		if msg == "" {
			msg = fmt.Sprintf("%s info exited with status %d", engine, res.ExitCode)
		}
		return false, msg
	}
	return true, fmt.Sprintf("%s daemon reachable.", engine)
}

// CheckNative verifies the host desktop toolchain
func CheckNative(exec system.CommandExecutor) *Report {
	report := &Report{Mode: "native"}

	for _, t := range nativeTools {
		_, err := exec.LookPath(t.name)
		report.Checks = append(report.Checks, Check{
			Name:        t.name,
			Description: t.description,
			OK:          err == nil,
		})
	}

	session := Check{
		Name:        "desktop session",
		Description: "startxfce4 or xfce4-session runs the desktop inside the virtual display.",
	}
	for _, name := range sessionManagers {
		if _, err := exec.LookPath(name); err == nil {
			session.OK = true
			session.Detail = name
			break
		}
	}
	report.Checks = append(report.Checks, session)
	return report
}

// GetSummary derives a health status from a sandbox snapshot.
func GetSummary(info *runtime.SandboxInfo) Status {
	if info == nil || info.ID == "" {
		return StatusStopped
	}
	if !info.Running {
		return StatusUnhealthy
	}
	for _, p := range info.Processes {
		if p.State == runtime.StateCrashed {
			return StatusUnhealthy
		}
	}
	return StatusHealthy
}

// GetUptime returns the sandbox age in human-readable format
func GetUptime(info *runtime.SandboxInfo, now time.Time) string {
	if info == nil || info.CreatedAt == nil {
		return "n/a"
	}
	return formatDuration(now.Sub(*info.CreatedAt))
}

// GetRemaining returns the time left before the sandbox is recycled
func GetRemaining(info *runtime.SandboxInfo, now time.Time) string {
	if info == nil || info.ExpiresAt == nil {
		return "n/a"
	}
	left := info.ExpiresAt.Sub(now)
	if left <= 0 {
		return "expired"
	}
	return formatDuration(left)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
