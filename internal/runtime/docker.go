package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/logging"
	"github.com/firefly-engineering/deskbox/internal/system"
)

// DockerConfig holds the container backend settings
type DockerConfig struct {
	// Command is the container engine CLI (docker or podman)
	Command string

	Image    string
	Password string
	TTL      time.Duration

	// HostPort publishes the web client; 0 disables publication
	HostPort int

	// NetworkMode is passed as --network when non-empty
	NetworkMode string

	CPUs   string
	Memory string

	// ExtraArgs are appended right before the image reference
	ExtraArgs []string
}

// DockerRuntime implements SandboxRuntime using a container engine CLI.
// It tracks at most one container, addressed by a timestamp-derived name.
type DockerRuntime struct {
	cfg       DockerConfig
	exec      system.CommandExecutor
	now       func() time.Time
	mu        sync.Mutex
	ids       identitySource
	name      string
	createdAt time.Time
}

// NewDockerRuntime creates a container backend. No external command is
// run until the first lifecycle call.
func NewDockerRuntime(cfg DockerConfig, opts ...Option) *DockerRuntime {
	if cfg.Command == "" {
		cfg.Command = "docker"
	}
	if cfg.CPUs == "" {
		cfg.CPUs = "1"
	}
	if cfg.Memory == "" {
		cfg.Memory = "512m"
	}

	o := buildOptions(opts)
	return &DockerRuntime{
		cfg:  cfg,
		exec: o.exec,
		now:  o.now,
		ids:  identitySource{prefix: "sandbox"},
	}
}

// Name returns the runtime identifier
func (r *DockerRuntime) Name() string {
	return r.cfg.Command
}

// ContainerName returns the name of the tracked container, if any
func (r *DockerRuntime) ContainerName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

// run is the single choke point for engine commands. With strict set, a
// non-zero exit becomes an ExecutionFailure carrying the diagnostic text.
func (r *DockerRuntime) run(ctx context.Context, strict bool, args ...string) (*system.Result, error) {
	binary := r.cfg.Command
	if _, err := r.exec.LookPath(binary); err != nil {
		return nil, errors.RuntimeUnavailable(fmt.Sprintf("required command %q is not available on PATH", binary), err)
	}

	res, err := r.exec.Run(ctx, system.RunOptions{}, binary, args...)
	if err != nil {
		return nil, errors.RuntimeUnavailable(fmt.Sprintf("command %q could not be executed", binary), err)
	}

	if strict && res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(res.Stdout)
		}
		if msg == "" {
			msg = fmt.Sprintf("%s %s exited with status %d", binary, args[0], res.ExitCode)
		}
		return res, errors.ExecutionFailure(msg, nil)
	}

	return res, nil
}

func (r *DockerRuntime) shouldPublishPort() bool {
	return r.cfg.HostPort > 0 && !strings.EqualFold(r.cfg.NetworkMode, "host")
}

// isRunningLocked degrades to false when the engine is unavailable.
func (r *DockerRuntime) isRunningLocked(ctx context.Context) bool {
	if r.name == "" {
		return false
	}
	res, err := r.run(ctx, false, "ps", "-q", "-f", "name=^"+r.name+"$")
	if err != nil {
		return false
	}
	return strings.TrimSpace(res.Stdout) != ""
}

// CreateSandbox starts a detached, self-removing container
func (r *DockerRuntime) CreateSandbox(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(ctx)
}

func (r *DockerRuntime) createLocked(ctx context.Context) (string, error) {
	if r.name != "" && r.isRunningLocked(ctx) {
		return r.name, nil
	}

	now := r.now()
	name := r.ids.next(now)

	args := []string{
		"run", "-d", "--rm",
		"--name", name,
		"--cpus", r.cfg.CPUs,
		"--memory", r.cfg.Memory,
	}
	if r.cfg.NetworkMode != "" {
		args = append(args, "--network", r.cfg.NetworkMode)
	}
	if r.shouldPublishPort() {
		args = append(args, "-p", fmt.Sprintf("%d:%d", r.cfg.HostPort, ContainerPort))
	}
	args = append(args, r.cfg.ExtraArgs...)
	args = append(args, r.cfg.Image)

	logging.Debug("creating container", "name", name, "runtime", r.cfg.Command, "image", r.cfg.Image)

	if _, err := r.run(ctx, true, args...); err != nil {
		r.name = ""
		r.createdAt = time.Time{}
		return "", err
	}

	r.name = name
	r.createdAt = now
	return name, nil
}

// EnsureStarted reuses, recycles, or creates the container
func (r *DockerRuntime) EnsureStarted(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureStartedLocked(ctx)
}

func (r *DockerRuntime) ensureStartedLocked(ctx context.Context) (string, error) {
	if r.name == "" || !r.isRunningLocked(ctx) {
		return r.createLocked(ctx)
	}
	if !r.createdAt.IsZero() && r.now().Sub(r.createdAt) > r.cfg.TTL {
		logging.Debug("recycling expired container", "name", r.name, "ttl", r.cfg.TTL)
		r.destroyLocked(context.WithoutCancel(ctx))
		return r.createLocked(ctx)
	}
	return r.name, nil
}

// Exec runs a command inside the container through a login shell
func (r *DockerRuntime) Exec(ctx context.Context, command string) (string, error) {
	if err := validateCommand(command); err != nil {
		return "", err
	}

	r.mu.Lock()
	name, err := r.ensureStartedLocked(ctx)
	r.mu.Unlock()
	if err != nil {
		return "", err
	}

	args := append([]string{"exec", name}, shellCommand(command)...)
	res, err := r.run(ctx, false, args...)
	if err != nil {
		return "", err
	}
	return formatOutput(res), nil
}

// AccessURL returns the web client URL on the published port
func (r *DockerRuntime) AccessURL(host, password string) string {
	if password == "" {
		password = r.cfg.Password
	}
	port := r.cfg.HostPort
	if port <= 0 {
		port = ContainerPort
	}
	return accessURL(host, port, password)
}

// Destroy stops the container. Errors are swallowed since the container
// may already be gone.
func (r *DockerRuntime) Destroy(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked(context.WithoutCancel(ctx))
	return nil
}

func (r *DockerRuntime) destroyLocked(ctx context.Context) {
	if r.name == "" {
		return
	}
	logging.Debug("stopping container", "name", r.name)
	_, _ = r.run(ctx, false, "stop", r.name)
	r.name = ""
	r.createdAt = time.Time{}
}

// Status reports the tracked container with a fresh liveness check
func (r *DockerRuntime) Status(ctx context.Context) (*SandboxInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := &SandboxInfo{
		Backend: r.cfg.Command,
		ID:      r.name,
		Running: r.isRunningLocked(ctx),
	}
	info.setTimes(r.createdAt, r.cfg.TTL)
	return info, nil
}

// Ensure DockerRuntime implements SandboxRuntime
var _ SandboxRuntime = (*DockerRuntime)(nil)
