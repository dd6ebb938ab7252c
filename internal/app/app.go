package app

import (
	"context"
	"sync"

	"github.com/firefly-engineering/deskbox/internal/config"
	"github.com/firefly-engineering/deskbox/internal/logging"
	"github.com/firefly-engineering/deskbox/internal/runtime"
	"github.com/firefly-engineering/deskbox/internal/system"
)

// App holds the application dependencies
type App struct {
	// Config is the loaded sandbox configuration
	Config *config.Config

	// Executor runs host commands for detection and checks
	Executor system.CommandExecutor

	// RuntimeOptions are passed to the runtime factory
	RuntimeOptions []runtime.Option

	mu      sync.Mutex
	runtime runtime.SandboxRuntime
}

// Option is a function that configures the App
type Option func(*App)

// WithConfig sets a custom configuration
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithRuntime sets a custom runtime
func WithRuntime(r runtime.SandboxRuntime) Option {
	return func(a *App) {
		a.runtime = r
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(e system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = e
	}
}

// WithRuntimeOptions appends options for the runtime factory
func WithRuntimeOptions(opts ...runtime.Option) Option {
	return func(a *App) {
		a.RuntimeOptions = append(a.RuntimeOptions, opts...)
	}
}

// New creates a new App with the given options.
// The runtime is built on first use, not here.
func New(opts ...Option) *App {
	app := &App{}

	for _, opt := range opts {
		opt(app)
	}

	if app.Config == nil {
		app.Config = config.Default()
	}
	if app.Executor == nil {
		app.Executor = system.DefaultExecutor()
	}

	return app
}

// Runtime returns the sandbox runtime, resolving the auto kind and
// building the backend on first call.
func (a *App) Runtime() (runtime.SandboxRuntime, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.runtime != nil {
		return a.runtime, nil
	}

	kind, err := runtime.Resolve(a.Config.Runtime, a.Executor)
	if err != nil {
		return nil, err
	}

	cfg := *a.Config
	cfg.Runtime = kind

	opts := append([]runtime.Option{runtime.WithExecutor(a.Executor)}, a.RuntimeOptions...)
	rt, err := runtime.New(&cfg, opts...)
	if err != nil {
		return nil, err
	}

	logging.Debug("initialized runtime", "kind", kind)
	a.runtime = rt
	return rt, nil
}

// HasRuntime reports whether a runtime was built or injected
func (a *App) HasRuntime() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runtime != nil
}

// Shutdown destroys the sandbox if a runtime was ever built
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	rt := a.runtime
	a.mu.Unlock()

	if rt == nil {
		return nil
	}
	return rt.Destroy(ctx)
}

// Default is the application instance used by the CLI. It is nil until
// the root command loads configuration, unless a test injects one.
var Default *App

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault clears the default application instance
func ResetDefault() {
	Default = nil
}
