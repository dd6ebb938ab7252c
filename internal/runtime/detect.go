package runtime

import (
	"github.com/firefly-engineering/deskbox/internal/config"
	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/logging"
	"github.com/firefly-engineering/deskbox/internal/system"
)

// detectOrder is the preference order used when resolving auto.
var detectOrder = []config.RuntimeKind{
	config.RuntimeDocker,
	config.RuntimePodman,
	config.RuntimeNative,
}

// Available returns the backends whose tooling is present on PATH, in
// preference order.
func Available(exec system.CommandExecutor) []config.RuntimeKind {
	if exec == nil {
		exec = system.DefaultExecutor()
	}

	var available []config.RuntimeKind
	for _, kind := range detectOrder {
		if kindAvailable(exec, kind) {
			available = append(available, kind)
		}
	}
	return available
}

// Detect returns the preferred available backend.
func Detect(exec system.CommandExecutor) (config.RuntimeKind, error) {
	available := Available(exec)
	if len(available) == 0 {
		return "", errors.RuntimeUnavailable("no supported sandbox runtime found (tried: docker, podman, native)", nil)
	}
	logging.Debug("detected sandbox runtime", "kind", available[0])
	return available[0], nil
}

// Resolve maps auto to a detected backend and returns any other kind
// unchanged.
func Resolve(kind config.RuntimeKind, exec system.CommandExecutor) (config.RuntimeKind, error) {
	if kind != config.RuntimeAuto {
		return kind, nil
	}
	return Detect(exec)
}

func kindAvailable(exec system.CommandExecutor, kind config.RuntimeKind) bool {
	switch kind {
	case config.RuntimeDocker, config.RuntimePodman:
		_, err := exec.LookPath(string(kind))
		return err == nil
	case config.RuntimeNative:
		for _, bin := range requiredBinaries {
			if _, err := exec.LookPath(bin); err != nil {
				return false
			}
		}
		for _, session := range []string{"startxfce4", "xfce4-session"} {
			if _, err := exec.LookPath(session); err == nil {
				return true
			}
		}
		return false
	default:
		return false
	}
}
