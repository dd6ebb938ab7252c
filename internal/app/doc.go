// Package app provides the application context for deskbox.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Config         *config.Config           // Loaded configuration
//	    Executor       system.CommandExecutor   // Host command runner
//	    RuntimeOptions []runtime.Option         // Factory options
//	}
//
// The sandbox runtime itself is built lazily by Runtime(), so commands
// that never touch a sandbox never probe the host.
//
// # Creating an App
//
// Use New with functional options:
//
//	// Production usage
//	a := app.New(app.WithConfig(cfg))
//
//	// Testing with custom dependencies
//	a := app.New(
//	    app.WithConfig(testConfig),
//	    app.WithRuntime(runtime.NewMockRuntime()),
//	)
//
// # Available Options
//
//	WithConfig(cfg)             // Custom configuration
//	WithRuntime(runtime)        // Custom sandbox runtime
//	WithExecutor(exec)          // Custom command executor
//	WithRuntimeOptions(opts...) // Options for runtime.New
package app
