package runtime

import (
	"fmt"

	"github.com/firefly-engineering/deskbox/internal/config"
	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/logging"
)

// New builds the backend selected by cfg.Runtime. It does not probe the
// host; the auto kind must be resolved with Resolve first.
func New(cfg *config.Config, opts ...Option) (SandboxRuntime, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	logging.Debug("creating runtime", "kind", cfg.Runtime)

	switch cfg.Runtime {
	case config.RuntimeDocker, config.RuntimePodman, "":
		command := string(cfg.Runtime)
		if command == "" {
			command = string(config.RuntimeDocker)
		}
		return NewDockerRuntime(DockerConfig{
			Command:     command,
			Image:       cfg.Image,
			Password:    cfg.Password,
			TTL:         cfg.TTL(),
			HostPort:    cfg.Port,
			NetworkMode: cfg.NetworkMode,
			CPUs:        cfg.CPUs,
			Memory:      cfg.Memory,
			ExtraArgs:   cfg.ExtraArgs,
		}, opts...), nil

	case config.RuntimeNative:
		return NewNativeRuntime(NativeConfig{
			Password: cfg.Password,
			TTL:      cfg.TTL(),
			HostPort: cfg.Port,
			Display:  cfg.Native.Display,
			Width:    cfg.Native.Width,
			Height:   cfg.Native.Height,
			VNCPort:  cfg.Native.VNCPort,
			WebRoot:  cfg.Native.WebRoot,
		}, opts...), nil

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unknown runtime kind: %s", cfg.Runtime), nil)
	}
}

// MustNew creates a runtime, panicking on error.
// Useful for initialization in tests.
func MustNew(cfg *config.Config, opts ...Option) SandboxRuntime {
	rt, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return rt
}
