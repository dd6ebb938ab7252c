package runtime

import (
	"strings"
	"sync"
	"time"

	"github.com/firefly-engineering/deskbox/internal/system"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeEngine emulates the container engine CLI on top of a MockExecutor.
type fakeEngine struct {
	mu      sync.Mutex
	running map[string]bool

	// runResult overrides the outcome of "run"
	runResult *system.Result

	// execResult is returned for "exec"
	execResult *system.Result
}

func newFakeEngine(exec *system.MockExecutor) *fakeEngine {
	e := &fakeEngine{running: make(map[string]bool)}
	exec.Handler = e.handle
	return e
}

func (e *fakeEngine) handle(cmd system.MockCommand) (*system.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(cmd.Args) == 0 {
		return &system.Result{}, nil
	}

	switch cmd.Args[0] {
	case "run":
		if e.runResult != nil {
			r := *e.runResult
			return &r, nil
		}
		for i, a := range cmd.Args {
			if a == "--name" && i+1 < len(cmd.Args) {
				e.running[cmd.Args[i+1]] = true
			}
		}
		return &system.Result{Stdout: "0123456789ab\n"}, nil
	case "ps":
		filter := cmd.Args[len(cmd.Args)-1]
		name := strings.TrimSuffix(strings.TrimPrefix(filter, "name=^"), "$")
		if e.running[name] {
			return &system.Result{Stdout: "0123456789ab\n"}, nil
		}
		return &system.Result{}, nil
	case "stop":
		delete(e.running, cmd.Args[1])
		return &system.Result{Stdout: cmd.Args[1] + "\n"}, nil
	case "exec":
		if e.execResult != nil {
			r := *e.execResult
			return &r, nil
		}
		return &system.Result{}, nil
	}
	return &system.Result{}, nil
}

// kill simulates the container going away on its own.
func (e *fakeEngine) kill(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.running, name)
}

func commandsNamed(calls []system.MockCommand, sub string) int {
	n := 0
	for _, c := range calls {
		if len(c.Args) > 0 && c.Args[0] == sub {
			n++
		}
	}
	return n
}

func containsSeq(args []string, seq ...string) bool {
	for i := 0; i+len(seq) <= len(args); i++ {
		match := true
		for j := range seq {
			if args[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
