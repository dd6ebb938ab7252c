package system

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// MockCommand is a recorded Run call.
type MockCommand struct {
	Name string
	Args []string
	Opts RunOptions
}

// Line returns the command as a single space-joined string.
func (c MockCommand) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// MockExecutor implements CommandExecutor for testing.
type MockExecutor struct {
	mu sync.Mutex

	// Missing lists binaries LookPath reports as absent.
	Missing map[string]bool

	// Results maps a command-line prefix to its result. The longest
	// matching prefix wins; unmatched commands succeed with empty output.
	Results map[string]*Result

	// Errors maps a command-line prefix to a start failure.
	Errors map[string]error

	// Handler, when set, answers every Run call before Results is consulted.
	Handler func(cmd MockCommand) (*Result, error)

	// Calls records every Run in order.
	Calls []MockCommand
}

// NewMockExecutor creates a new mock executor
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Missing: make(map[string]bool),
		Results: make(map[string]*Result),
		Errors:  make(map[string]error),
	}
}

// SetMissing marks binaries as absent from the search path.
func (m *MockExecutor) SetMissing(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range names {
		m.Missing[n] = true
	}
}

// SetResult sets the result for commands starting with prefix.
func (m *MockExecutor) SetResult(prefix string, result *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Results[prefix] = result
}

// SetError makes commands starting with prefix fail to start.
func (m *MockExecutor) SetError(prefix string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[prefix] = err
}

// GetCalls returns a copy of the recorded calls.
func (m *MockExecutor) GetCalls() []MockCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockCommand, len(m.Calls))
	copy(calls, m.Calls)
	return calls
}

// CallsWithPrefix returns the recorded calls whose line starts with prefix.
func (m *MockExecutor) CallsWithPrefix(prefix string) []MockCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []MockCommand
	for _, c := range m.Calls {
		if strings.HasPrefix(c.Line(), prefix) {
			calls = append(calls, c)
		}
	}
	return calls
}

func (m *MockExecutor) LookPath(file string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Missing[file] {
		return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + file, nil
}

func (m *MockExecutor) Run(ctx context.Context, opts RunOptions, name string, args ...string) (*Result, error) {
	cmd := MockCommand{Name: name, Args: append([]string(nil), args...), Opts: opts}

	m.mu.Lock()
	m.Calls = append(m.Calls, cmd)
	handler := m.Handler
	m.mu.Unlock()

	if handler != nil {
		return handler(cmd)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	line := cmd.Line()
	if err := longestMatch(m.Errors, line); err != nil {
		return nil, err
	}
	if result := longestMatch(m.Results, line); result != nil {
		r := *result
		return &r, nil
	}
	return &Result{}, nil
}

func longestMatch[T any](table map[string]T, line string) T {
	var best T
	bestLen := -1
	for prefix, v := range table {
		if strings.HasPrefix(line, prefix) && len(prefix) > bestLen {
			best = v
			bestLen = len(prefix)
		}
	}
	return best
}

// MockProcess implements Process for testing.
type MockProcess struct {
	mu sync.Mutex

	Spec ProcessSpec
	pid  int

	exited     bool
	terminated bool
	killed     bool

	// IgnoreTerminate keeps the process alive through Terminate, forcing Kill.
	IgnoreTerminate bool
}

func (p *MockProcess) Pid() int { return p.pid }

func (p *MockProcess) Exited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited
}

// Exit simulates the process exiting on its own.
func (p *MockProcess) Exit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exited = true
}

func (p *MockProcess) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = true
	if !p.IgnoreTerminate {
		p.exited = true
	}
	return nil
}

func (p *MockProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed = true
	p.exited = true
	return nil
}

func (p *MockProcess) Wait(timeout time.Duration) bool {
	return p.Exited()
}

// Terminated reports whether Terminate was called.
func (p *MockProcess) Terminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

// Killed reports whether Kill was called.
func (p *MockProcess) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// MockStarter implements ProcessStarter for testing.
type MockStarter struct {
	mu sync.Mutex

	// ExitOnStart lists process names that exit right after launch.
	ExitOnStart map[string]bool

	// IgnoreTerminate lists process names that survive Terminate.
	IgnoreTerminate map[string]bool

	// Errors maps process names to start failures.
	Errors map[string]error

	// Started records every process in launch order.
	Started []*MockProcess

	nextPid int
}

// NewMockStarter creates a new mock starter
func NewMockStarter() *MockStarter {
	return &MockStarter{
		ExitOnStart:     make(map[string]bool),
		IgnoreTerminate: make(map[string]bool),
		Errors:          make(map[string]error),
		nextPid:         1000,
	}
}

func (s *MockStarter) Start(spec ProcessSpec) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.Errors[spec.Name]; ok {
		return nil, fmt.Errorf("start %s: %w", spec.Name, err)
	}

	if spec.Output != nil {
		_, _ = io.WriteString(spec.Output, spec.Name+" started\n")
	}

	s.nextPid++
	p := &MockProcess{
		Spec:            spec,
		pid:             s.nextPid,
		exited:          s.ExitOnStart[spec.Name],
		IgnoreTerminate: s.IgnoreTerminate[spec.Name],
	}
	s.Started = append(s.Started, p)
	return p, nil
}

// Processes returns a copy of the started processes.
func (s *MockStarter) Processes() []*MockProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	procs := make([]*MockProcess, len(s.Started))
	copy(procs, s.Started)
	return procs
}

// Named returns the most recently started process with the given name.
func (s *MockStarter) Named(name string) *MockProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Started) - 1; i >= 0; i-- {
		if s.Started[i].Spec.Name == name {
			return s.Started[i]
		}
	}
	return nil
}

// Ensure mocks implement their interfaces
var (
	_ CommandExecutor = (*MockExecutor)(nil)
	_ ProcessStarter  = (*MockStarter)(nil)
	_ Process         = (*MockProcess)(nil)
)
