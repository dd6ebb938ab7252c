package runtime

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/system"
)

// ErrorMarker prefixes the output of a user command that exited non-zero.
const ErrorMarker = "[error]"

// ContainerPort is the web client port inside the sandbox image.
const ContainerPort = 6080

// SandboxRuntime is the interface both sandbox backends implement.
// Callers hold one instance for the process lifetime.
type SandboxRuntime interface {
	// Name returns the backend identifier (e.g., "docker", "native")
	Name() string

	// CreateSandbox returns the identity of the live sandbox, provisioning
	// a new one when none passes the liveness check.
	CreateSandbox(ctx context.Context) (string, error)

	// EnsureStarted reuses a live sandbox, recycles one older than the TTL,
	// and creates one when none is live.
	EnsureStarted(ctx context.Context) (string, error)

	// Exec runs a shell command inside the sandbox. A command that exits
	// non-zero yields output prefixed with ErrorMarker and a nil error.
	Exec(ctx context.Context, command string) (string, error)

	// AccessURL composes the browser URL for the sandbox desktop. An empty
	// password selects the configured one. No liveness check is made.
	AccessURL(host, password string) string

	// Destroy tears the sandbox down. It is idempotent and never fails
	// because the resource is already gone.
	Destroy(ctx context.Context) error

	// Status reports the current sandbox without provisioning one.
	Status(ctx context.Context) (*SandboxInfo, error)
}

// ProcessState is the lifecycle state of one supervised native process
type ProcessState string

const (
	StateAbsent     ProcessState = "absent"
	StateLaunching  ProcessState = "launching"
	StateLive       ProcessState = "live"
	StateHealthy    ProcessState = "healthy"
	StateCrashed    ProcessState = "crashed"
	StateTerminated ProcessState = "terminated"
)

// ProcessInfo describes one supervised native process
type ProcessInfo struct {
	Name    string       `json:"name"`
	Pid     int          `json:"pid"`
	State   ProcessState `json:"state"`
	LogPath string       `json:"logPath,omitempty"`
}

// SandboxInfo is a point-in-time view of a backend's sandbox
type SandboxInfo struct {
	Backend   string        `json:"backend"`
	ID        string        `json:"id,omitempty"`
	Running   bool          `json:"running"`
	CreatedAt *time.Time    `json:"createdAt,omitempty"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
	Workspace string        `json:"workspace,omitempty"`
	Processes []ProcessInfo `json:"processes,omitempty"`
}

func (s *SandboxInfo) setTimes(createdAt time.Time, ttl time.Duration) {
	if createdAt.IsZero() {
		return
	}
	created := createdAt
	expires := createdAt.Add(ttl)
	s.CreatedAt = &created
	s.ExpiresAt = &expires
}

// Option configures a backend's collaborators
type Option func(*options)

type options struct {
	exec    system.CommandExecutor
	starter system.ProcessStarter
	now     func() time.Time
	sleep   func(time.Duration)
	environ func() []string
}

// WithExecutor sets the command executor used for control-plane and user commands
func WithExecutor(e system.CommandExecutor) Option {
	return func(o *options) { o.exec = e }
}

// WithStarter sets the process starter used by the native backend
func WithStarter(s system.ProcessStarter) Option {
	return func(o *options) { o.starter = s }
}

// WithClock sets the time source used for TTL decisions
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSleep sets the function used for process settle delays
func WithSleep(sleep func(time.Duration)) Option {
	return func(o *options) { o.sleep = sleep }
}

// WithEnviron sets the host environment the native backend inherits
func WithEnviron(environ func() []string) Option {
	return func(o *options) { o.environ = environ }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.exec == nil {
		o.exec = system.DefaultExecutor()
	}
	if o.starter == nil {
		o.starter = system.DefaultStarter()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.sleep == nil {
		o.sleep = time.Sleep
	}
	return o
}

// identitySource hands out "<prefix>-<unix seconds>" identities. A second
// reused by a fast recycle gets a "-<n>" suffix so identities never repeat
// back to back.
type identitySource struct {
	prefix   string
	lastBase string
	seq      int
}

func (s *identitySource) next(now time.Time) string {
	base := fmt.Sprintf("%s-%d", s.prefix, now.Unix())
	if base == s.lastBase {
		s.seq++
		return fmt.Sprintf("%s-%d", base, s.seq)
	}
	s.lastBase = base
	s.seq = 0
	return base
}

func validateCommand(command string) error {
	if strings.TrimSpace(command) == "" {
		return errors.InvalidArgument("command must not be empty")
	}
	return nil
}

// formatOutput turns a finished user command into the caller-visible string.
func formatOutput(res *system.Result) string {
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(res.Stdout)
		}
		if msg == "" {
			msg = "command failed"
		}
		return ErrorMarker + " " + msg
	}
	return strings.TrimRightFunc(res.Stdout, unicode.IsSpace)
}

// IsErrorOutput reports whether Exec output describes a failed command.
func IsErrorOutput(output string) bool {
	return strings.HasPrefix(output, ErrorMarker)
}

// accessURL builds http://<host>:<port>/vnc.html?password=<password>.
// A port already present on host is replaced.
func accessURL(host string, port int, password string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")

	u := url.URL{
		Scheme:   "http",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/vnc.html",
		RawQuery: "password=" + queryEscape(password),
	}
	return u.String()
}

// queryEscape escapes a query value for decodeURIComponent, which does
// not treat '+' as a space.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// shellCommand wraps a user command in a login shell.
func shellCommand(command string) []string {
	return []string{"bash", "-lc", command}
}
