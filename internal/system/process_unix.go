//go:build unix

package system

import (
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// osStarter implements ProcessStarter with os/exec. Every process is
// started in its own session so signals reach its whole group.
type osStarter struct{}

func (s *osStarter) Start(spec ProcessSpec) (Process, error) {
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Env = spec.Env
	cmd.Dir = spec.Dir
	cmd.Stdout = spec.Output
	cmd.Stderr = spec.Output
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.Name, err)
	}

	p := &osProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

type osProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *osProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *osProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *osProcess) Terminate() error {
	return p.signal(unix.SIGTERM)
}

func (p *osProcess) Kill() error {
	return p.signal(unix.SIGKILL)
}

// signal targets the process group first and falls back to the leader.
func (p *osProcess) signal(sig unix.Signal) error {
	if p.Exited() {
		return nil
	}
	err := unix.Kill(-p.Pid(), sig)
	if err == nil || errors.Is(err, unix.ESRCH) {
		return nil
	}
	return p.cmd.Process.Signal(sig)
}

func (p *osProcess) Wait(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return true
	case <-timer.C:
		return false
	}
}
