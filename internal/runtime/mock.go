package runtime

import (
	"context"
	"sync"
)

// MockRuntime is a mock implementation of SandboxRuntime for testing
type MockRuntime struct {
	mu sync.RWMutex

	// NameValue is returned by Name
	NameValue string

	// ID is the identity handed out by CreateSandbox and EnsureStarted
	ID string

	// Running reports whether a sandbox is currently tracked
	Running bool

	// ExecOutput maps commands to predefined output
	ExecOutput map[string]string

	// Errors allows injecting errors for specific operations
	Errors map[string]error

	// Port and Password feed AccessURL
	Port     int
	Password string

	// CallLog records all method calls for verification
	CallLog []MockCall
}

// MockCall represents a recorded method call
type MockCall struct {
	Method string
	Args   []interface{}
}

// NewMockRuntime creates a new mock runtime
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{
		NameValue:  "mock",
		ID:         "sandbox-mock",
		ExecOutput: make(map[string]string),
		Errors:     make(map[string]error),
		Port:       ContainerPort,
		Password:   "secret",
	}
}

func (m *MockRuntime) record(method string, args ...interface{}) {
	m.CallLog = append(m.CallLog, MockCall{Method: method, Args: args})
}

// SetError sets an error to be returned for a specific operation
func (m *MockRuntime) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[operation] = err
}

// SetExecOutput sets the output returned for a command
func (m *MockRuntime) SetExecOutput(command, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecOutput[command] = output
}

// GetCalls returns all recorded calls
func (m *MockRuntime) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]MockCall, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// CallCount returns how many times a method was called
func (m *MockRuntime) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.CallLog {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockRuntime) Name() string {
	return m.NameValue
}

func (m *MockRuntime) CreateSandbox(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateSandbox")
	return m.start("CreateSandbox")
}

func (m *MockRuntime) EnsureStarted(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("EnsureStarted")
	return m.start("EnsureStarted")
}

func (m *MockRuntime) start(op string) (string, error) {
	if err := m.Errors[op]; err != nil {
		return "", err
	}
	m.Running = true
	return m.ID, nil
}

func (m *MockRuntime) Exec(ctx context.Context, command string) (string, error) {
	if err := validateCommand(command); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Exec", command)
	if err := m.Errors["Exec"]; err != nil {
		return "", err
	}
	m.Running = true
	return m.ExecOutput[command], nil
}

func (m *MockRuntime) AccessURL(host, password string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if password == "" {
		password = m.Password
	}
	return accessURL(host, m.Port, password)
}

func (m *MockRuntime) Destroy(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Destroy")
	m.Running = false
	return m.Errors["Destroy"]
}

func (m *MockRuntime) Status(ctx context.Context) (*SandboxInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Status")
	if err := m.Errors["Status"]; err != nil {
		return nil, err
	}
	info := &SandboxInfo{Backend: m.NameValue, Running: m.Running}
	if m.Running {
		info.ID = m.ID
	}
	return info, nil
}

// Ensure MockRuntime implements SandboxRuntime
var _ SandboxRuntime = (*MockRuntime)(nil)
