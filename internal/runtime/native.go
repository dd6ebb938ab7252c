package runtime

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/logging"
	"github.com/firefly-engineering/deskbox/internal/system"
	"github.com/firefly-engineering/deskbox/internal/workspace"
)

// Supervised process names, in launch order.
const (
	ProcDisplayServer       = "display-server"
	ProcRemoteDisplayServer = "remote-display-server"
	ProcWebsocketBridge     = "websocket-bridge"
	ProcDesktopSession      = "desktop-session"
)

// DefaultGracePeriod is how long teardown waits after SIGTERM.
const DefaultGracePeriod = 5 * time.Second

// Settle delays before a freshly started process is polled.
const (
	DisplaySettle = time.Second
	BridgeSettle  = time.Second
	SessionSettle = 2 * time.Second
)

// requiredBinaries must be on PATH before anything is launched.
var requiredBinaries = []string{"Xvfb", "x11vnc", "websockify"}

// NativeConfig holds the native backend settings
type NativeConfig struct {
	Password string
	TTL      time.Duration

	// HostPort is the web client port served by the websocket bridge
	HostPort int

	Display string
	Width   int
	Height  int
	VNCPort int

	// WebRoot is the directory of the bundled web client
	WebRoot string

	// WorkspaceDir is the parent directory for workspaces; empty means
	// the system temp dir
	WorkspaceDir string

	GracePeriod time.Duration
}

type managedProcess struct {
	name    string
	proc    system.Process
	state   ProcessState
	log     *os.File
	logPath string
}

// NativeRuntime implements SandboxRuntime by supervising a virtual
// display, a VNC server, a websocket bridge, and a desktop session
// directly on the host.
type NativeRuntime struct {
	cfg     NativeConfig
	exec    system.CommandExecutor
	starter system.ProcessStarter
	now     func() time.Time
	sleep   func(time.Duration)
	environ func() []string

	mu        sync.Mutex
	ids       identitySource
	id        string
	createdAt time.Time
	ws        *workspace.Workspace
	env       []string
	procs     []*managedProcess
}

// NewNativeRuntime creates a native backend. Nothing is launched until
// the first lifecycle call.
func NewNativeRuntime(cfg NativeConfig, opts ...Option) *NativeRuntime {
	if cfg.Display == "" {
		cfg.Display = ":99"
	}
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	if cfg.VNCPort <= 0 {
		cfg.VNCPort = 5901
	}
	if cfg.HostPort <= 0 {
		cfg.HostPort = ContainerPort
	}
	if cfg.WebRoot == "" {
		cfg.WebRoot = "/usr/share/novnc/"
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}

	o := buildOptions(opts)
	environ := o.environ
	if environ == nil {
		environ = os.Environ
	}

	return &NativeRuntime{
		cfg:     cfg,
		exec:    o.exec,
		starter: o.starter,
		now:     o.now,
		sleep:   o.sleep,
		environ: environ,
		ids:     identitySource{prefix: "native"},
	}
}

// Name returns the runtime identifier
func (r *NativeRuntime) Name() string {
	return "native"
}

// isAliveLocked requires every supervised process to be running.
func (r *NativeRuntime) isAliveLocked() bool {
	if len(r.procs) == 0 {
		return false
	}
	alive := true
	for _, p := range r.procs {
		if p.proc.Exited() {
			if p.state != StateTerminated {
				p.state = StateCrashed
			}
			alive = false
		}
	}
	return alive
}

// CreateSandbox launches the desktop pipeline unless it is already live
func (r *NativeRuntime) CreateSandbox(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(ctx)
}

func (r *NativeRuntime) createLocked(ctx context.Context) (string, error) {
	if r.isAliveLocked() {
		return r.id, nil
	}

	// Clear out whatever a previous partial or crashed run left behind.
	r.teardownLocked()

	for _, bin := range requiredBinaries {
		if _, err := r.exec.LookPath(bin); err != nil {
			return "", errors.RuntimeUnavailable(fmt.Sprintf("required command %q is not available on PATH", bin), err)
		}
	}

	ws, err := workspace.New(r.cfg.WorkspaceDir, "deskbox-")
	if err != nil {
		return "", errors.ExecutionFailure("failed to create sandbox workspace", err)
	}
	r.ws = ws
	r.env = r.buildEnv(ws)

	if err := r.storePassword(ctx); err != nil {
		r.teardownLocked()
		return "", err
	}

	if err := r.launchPipeline(); err != nil {
		r.teardownLocked()
		return "", err
	}

	now := r.now()
	r.id = r.ids.next(now)
	r.createdAt = now
	logging.Debug("native sandbox ready", "id", r.id, "workspace", ws.Root, "display", r.cfg.Display)
	return r.id, nil
}

func (r *NativeRuntime) storePassword(ctx context.Context) error {
	if r.ws.HasPassword() {
		return nil
	}
	res, err := r.exec.Run(ctx, system.RunOptions{Env: r.env, Dir: r.ws.Root},
		"x11vnc", "-storepasswd", r.cfg.Password, r.ws.PasswordFile())
	if err != nil {
		return errors.RuntimeUnavailable("x11vnc could not be executed", err)
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = fmt.Sprintf("x11vnc -storepasswd exited with status %d", res.ExitCode)
		}
		return errors.ExecutionFailure(msg, nil)
	}
	return nil
}

type launchStep struct {
	name   string
	settle time.Duration
	argv   func() ([]string, error)
}

func (r *NativeRuntime) launchPipeline() error {
	steps := []launchStep{
		{ProcDisplayServer, DisplaySettle, func() ([]string, error) {
			return []string{"Xvfb", r.cfg.Display, "-screen", "0",
				fmt.Sprintf("%dx%dx24", r.cfg.Width, r.cfg.Height)}, nil
		}},
		{ProcRemoteDisplayServer, DisplaySettle, func() ([]string, error) {
			return []string{"x11vnc", "-display", r.cfg.Display,
				"-rfbauth", r.ws.PasswordFile(),
				"-rfbport", strconv.Itoa(r.cfg.VNCPort),
				"-forever", "-shared"}, nil
		}},
		{ProcWebsocketBridge, BridgeSettle, func() ([]string, error) {
			return []string{"websockify", "--web=" + r.cfg.WebRoot,
				strconv.Itoa(r.cfg.HostPort),
				"localhost:" + strconv.Itoa(r.cfg.VNCPort)}, nil
		}},
		{ProcDesktopSession, SessionSettle, r.sessionCommand},
	}

	for _, step := range steps {
		argv, err := step.argv()
		if err != nil {
			return err
		}
		if err := r.launch(step, argv); err != nil {
			return err
		}
	}
	return nil
}

// sessionCommand picks the desktop session, wrapped in a session bus
// when dbus-launch is installed.
func (r *NativeRuntime) sessionCommand() ([]string, error) {
	var session string
	for _, candidate := range []string{"startxfce4", "xfce4-session"} {
		if _, err := r.exec.LookPath(candidate); err == nil {
			session = candidate
			break
		}
	}
	if session == "" {
		return nil, errors.RuntimeUnavailable("no desktop session manager found (need startxfce4 or xfce4-session)", nil)
	}
	if _, err := r.exec.LookPath("dbus-launch"); err == nil {
		return []string{"dbus-launch", "--exit-with-session", session}, nil
	}
	return []string{session}, nil
}

func (r *NativeRuntime) launch(step launchStep, argv []string) error {
	path, err := r.exec.LookPath(argv[0])
	if err != nil {
		return errors.RuntimeUnavailable(fmt.Sprintf("required command %q is not available on PATH", argv[0]), err)
	}

	logPath, err := r.ws.LogPath(step.name)
	if err != nil {
		return errors.ExecutionFailure("invalid process log path", err)
	}
	logFile, err := r.ws.OpenLog(step.name)
	if err != nil {
		return errors.ExecutionFailure(fmt.Sprintf("failed to open log for %s", step.name), err)
	}

	mp := &managedProcess{name: step.name, state: StateLaunching, log: logFile, logPath: logPath}

	logging.Debug("starting process", "name", step.name, "path", path, "args", argv[1:])
	proc, err := r.starter.Start(system.ProcessSpec{
		Name:   step.name,
		Path:   path,
		Args:   argv[1:],
		Env:    r.env,
		Dir:    r.ws.Root,
		Output: logFile,
	})
	if err != nil {
		_ = logFile.Close()
		return errors.ExecutionFailure(fmt.Sprintf("failed to start %s", step.name), err)
	}

	mp.proc = proc
	mp.state = StateLive
	r.procs = append(r.procs, mp)

	r.sleep(step.settle)

	if proc.Exited() {
		mp.state = StateCrashed
		return errors.ExecutionFailure(fmt.Sprintf("%s exited during startup (see %s)", step.name, logPath), nil)
	}
	mp.state = StateHealthy
	return nil
}

// buildEnv derives the sandbox environment from the host environment.
func (r *NativeRuntime) buildEnv(ws *workspace.Workspace) []string {
	forced := map[string]string{
		"DISPLAY":         r.cfg.Display,
		"HOME":            ws.Root,
		"XDG_RUNTIME_DIR": ws.RuntimeDir(),
	}
	defaults := [][2]string{
		{"SHELL", "/bin/bash"},
		{"LANG", "en_US.UTF-8"},
		{"USER", "sandbox"},
	}

	host := r.environ()
	env := make([]string, 0, len(host)+len(forced)+len(defaults))
	seen := make(map[string]bool, len(host))
	for _, kv := range host {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := forced[key]; ok {
			continue
		}
		seen[key] = true
		env = append(env, kv)
	}
	for _, key := range []string{"DISPLAY", "HOME", "XDG_RUNTIME_DIR"} {
		env = append(env, key+"="+forced[key])
	}
	for _, d := range defaults {
		if !seen[d[0]] {
			env = append(env, d[0]+"="+d[1])
		}
	}
	return env
}

// EnsureStarted reuses, recycles, or launches the desktop stack
func (r *NativeRuntime) EnsureStarted(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureStartedLocked(ctx)
}

func (r *NativeRuntime) ensureStartedLocked(ctx context.Context) (string, error) {
	if !r.isAliveLocked() {
		return r.createLocked(ctx)
	}
	if !r.createdAt.IsZero() && r.now().Sub(r.createdAt) > r.cfg.TTL {
		logging.Debug("recycling expired native sandbox", "id", r.id, "ttl", r.cfg.TTL)
		r.teardownLocked()
		return r.createLocked(ctx)
	}
	return r.id, nil
}

// Exec runs a command in the sandbox environment with the workspace as cwd
func (r *NativeRuntime) Exec(ctx context.Context, command string) (string, error) {
	if err := validateCommand(command); err != nil {
		return "", err
	}

	r.mu.Lock()
	if _, err := r.ensureStartedLocked(ctx); err != nil {
		r.mu.Unlock()
		return "", err
	}
	env := append([]string(nil), r.env...)
	dir := r.ws.Root
	r.mu.Unlock()

	argv := shellCommand(command)
	res, err := r.exec.Run(ctx, system.RunOptions{Env: env, Dir: dir}, argv[0], argv[1:]...)
	if err != nil {
		return "", errors.RuntimeUnavailable("bash could not be executed", err)
	}
	return formatOutput(res), nil
}

// AccessURL returns the web client URL served by the websocket bridge
func (r *NativeRuntime) AccessURL(host, password string) string {
	if password == "" {
		password = r.cfg.Password
	}
	return accessURL(host, r.cfg.HostPort, password)
}

// Destroy stops every supervised process and removes the workspace
func (r *NativeRuntime) Destroy(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardownLocked()
	return nil
}

// teardownLocked stops processes newest first. Every step is best-effort.
func (r *NativeRuntime) teardownLocked() {
	for i := len(r.procs) - 1; i >= 0; i-- {
		p := r.procs[i]
		if !p.proc.Exited() {
			logging.Debug("terminating process", "name", p.name, "pid", p.proc.Pid())
			_ = p.proc.Terminate()
			if !p.proc.Wait(r.cfg.GracePeriod) {
				logging.Debug("killing process", "name", p.name, "pid", p.proc.Pid())
				_ = p.proc.Kill()
				p.proc.Wait(r.cfg.GracePeriod)
			}
		}
		p.state = StateTerminated
		if p.log != nil {
			_ = p.log.Close()
		}
	}
	r.procs = nil

	if r.ws != nil {
		if err := r.ws.Remove(); err != nil {
			logging.Debug("failed to remove workspace", "path", r.ws.Root, "error", err)
		}
		r.ws = nil
	}
	r.env = nil
	r.id = ""
	r.createdAt = time.Time{}
}

// Status reports the per-process state table without launching anything
func (r *NativeRuntime) Status(ctx context.Context) (*SandboxInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := &SandboxInfo{
		Backend: r.Name(),
		ID:      r.id,
		Running: r.isAliveLocked(),
	}
	info.setTimes(r.createdAt, r.cfg.TTL)
	if r.ws != nil {
		info.Workspace = r.ws.Root
	}
	for _, p := range r.procs {
		info.Processes = append(info.Processes, ProcessInfo{
			Name:    p.name,
			Pid:     p.proc.Pid(),
			State:   p.state,
			LogPath: p.logPath,
		})
	}
	return info, nil
}

// Ensure NativeRuntime implements SandboxRuntime
var _ SandboxRuntime = (*NativeRuntime)(nil)
