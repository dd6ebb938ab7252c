package runtime

import (
	"slices"
	"testing"

	"github.com/firefly-engineering/deskbox/internal/config"
	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/system"
)

func TestAvailable(t *testing.T) {
	tests := []struct {
		name    string
		missing []string
		want    []config.RuntimeKind
	}{
		{"everything", nil, []config.RuntimeKind{config.RuntimeDocker, config.RuntimePodman, config.RuntimeNative}},
		{"no docker", []string{"docker"}, []config.RuntimeKind{config.RuntimePodman, config.RuntimeNative}},
		{"native without session", []string{"podman", "startxfce4", "xfce4-session"}, []config.RuntimeKind{config.RuntimeDocker}},
		{"native with xfce4-session only", []string{"docker", "podman", "startxfce4"}, []config.RuntimeKind{config.RuntimeNative}},
		{"native without x11vnc", []string{"x11vnc"}, []config.RuntimeKind{config.RuntimeDocker, config.RuntimePodman}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := system.NewMockExecutor()
			exec.SetMissing(tt.missing...)
			if got := Available(exec); !slices.Equal(got, tt.want) {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect_NothingAvailable(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.SetMissing("docker", "podman", "Xvfb")

	_, err := Detect(exec)
	if !errors.IsRuntimeUnavailable(err) {
		t.Errorf("Detect() error = %v, want RuntimeUnavailable", err)
	}
}

func TestResolve(t *testing.T) {
	exec := system.NewMockExecutor()
	exec.SetMissing("docker")

	got, err := Resolve(config.RuntimeAuto, exec)
	if err != nil {
		t.Fatalf("Resolve(auto) error = %v", err)
	}
	if got != config.RuntimePodman {
		t.Errorf("Resolve(auto) = %q, want podman", got)
	}

	got, err = Resolve(config.RuntimeDocker, exec)
	if err != nil || got != config.RuntimeDocker {
		t.Errorf("Resolve(docker) = %q, %v; explicit kinds pass through", got, err)
	}
}
