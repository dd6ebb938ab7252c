package health

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/firefly-engineering/deskbox/internal/runtime"
	"github.com/firefly-engineering/deskbox/internal/system"
)

func TestStatusConstants(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusUnhealthy, "unhealthy"},
		{StatusStopped, "stopped"},
	}

	for _, tt := range tests {
		if string(tt.status) != tt.want {
			t.Errorf("Status %v = %q, want %q", tt.status, tt.status, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"seconds", 30 * time.Second, "30s"},
		{"one minute", 1 * time.Minute, "1m"},
		{"minutes", 45 * time.Minute, "45m"},
		{"one hour", 1 * time.Hour, "1h 0m"},
		{"hours and minutes", 2*time.Hour + 30*time.Minute, "2h 30m"},
		{"one day", 24 * time.Hour, "1d 0h"},
		{"days and hours", 3*24*time.Hour + 5*time.Hour, "3d 5h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDuration(tt.duration)
			if got != tt.want {
				t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestCheckContainer(t *testing.T) {
	tests := []struct {
		name       string
		missing    []string
		info       *system.Result
		wantOK     bool
		wantDetail string
	}{
		{"daemon reachable", nil, &system.Result{}, true, "docker daemon reachable."},
		{"daemon down", nil, &system.Result{ExitCode: 1, Stderr: "Cannot connect to the Docker daemon\n"}, false, "Cannot connect to the Docker daemon"},
		{"daemon down stdout only", nil, &system.Result{ExitCode: 1, Stdout: "permission denied"}, false, "permission denied"},
		{"cli missing", []string{"docker"}, nil, false, "docker CLI not found on PATH."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := system.NewMockExecutor()
			exec.SetMissing(tt.missing...)
			if tt.info != nil {
				exec.SetResult("docker info", tt.info)
			}

			report := Run(context.Background(), CheckOptions{Executor: exec})
			if report.OK() != tt.wantOK {
				t.Errorf("OK() = %v, want %v (checks %+v)", report.OK(), tt.wantOK, report.Checks)
			}
			if len(report.Checks) != 2 {
				t.Fatalf("got %d checks, want 2", len(report.Checks))
			}
			daemon := report.Checks[1]
			if daemon.Name != "docker daemon" || daemon.Detail != tt.wantDetail {
				t.Errorf("daemon check = %+v, want detail %q", daemon, tt.wantDetail)
			}
		})
	}
}

func TestCheckContainer_Podman(t *testing.T) {
	exec := system.NewMockExecutor()
	report := Run(context.Background(), CheckOptions{Engine: "podman", Executor: exec})

	if report.Mode != "podman" || !report.OK() {
		t.Errorf("report = %+v", report)
	}
	if calls := exec.CallsWithPrefix("podman info"); len(calls) != 1 {
		t.Errorf("expected podman info to run once, got %d", len(calls))
	}
}

func TestCheckNative(t *testing.T) {
	tests := []struct {
		name        string
		missing     []string
		wantMissing []string
	}{
		{"all present", nil, nil},
		{"no x11vnc", []string{"x11vnc"}, []string{"x11vnc"}},
		{"xfce4-session fallback", []string{"startxfce4"}, nil},
		{"no session", []string{"startxfce4", "xfce4-session", "websockify"}, []string{"websockify", "desktop session"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := system.NewMockExecutor()
			exec.SetMissing(tt.missing...)

			report := Run(context.Background(), CheckOptions{Native: true, Executor: exec})
			got := strings.Join(report.Missing(), ",")
			want := strings.Join(tt.wantMissing, ",")
			if got != want {
				t.Errorf("Missing() = %q, want %q", got, want)
			}
			if len(exec.GetCalls()) != 0 {
				t.Error("native checks should only look up binaries")
			}
		})
	}
}

func TestGetSummary(t *testing.T) {
	tests := []struct {
		name string
		info *runtime.SandboxInfo
		want Status
	}{
		{"nil", nil, StatusStopped},
		{"no sandbox", &runtime.SandboxInfo{Backend: "docker"}, StatusStopped},
		{"running", &runtime.SandboxInfo{ID: "sandbox-1", Running: true}, StatusHealthy},
		{"gone", &runtime.SandboxInfo{ID: "sandbox-1"}, StatusUnhealthy},
		{"crashed process", &runtime.SandboxInfo{
			ID:        "native-1",
			Running:   true,
			Processes: []runtime.ProcessInfo{{Name: "display-server", State: runtime.StateCrashed}},
		}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSummary(tt.info); got != tt.want {
				t.Errorf("GetSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetUptimeAndRemaining(t *testing.T) {
	created := time.Unix(1700000000, 0)
	expires := created.Add(30 * time.Minute)
	info := &runtime.SandboxInfo{ID: "sandbox-1", CreatedAt: &created, ExpiresAt: &expires}

	now := created.Add(10 * time.Minute)
	if got := GetUptime(info, now); got != "10m" {
		t.Errorf("GetUptime() = %q, want %q", got, "10m")
	}
	if got := GetRemaining(info, now); got != "20m" {
		t.Errorf("GetRemaining() = %q, want %q", got, "20m")
	}
	if got := GetRemaining(info, expires.Add(time.Second)); got != "expired" {
		t.Errorf("GetRemaining() after expiry = %q, want %q", got, "expired")
	}
	if got := GetUptime(&runtime.SandboxInfo{}, now); got != "n/a" {
		t.Errorf("GetUptime() without sandbox = %q, want n/a", got)
	}
}
