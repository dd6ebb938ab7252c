package cmd

import (
	"github.com/firefly-engineering/deskbox/internal/app"
	"github.com/firefly-engineering/deskbox/internal/config"
	"github.com/firefly-engineering/deskbox/internal/runtime"
)

// currentApp returns the application context, building a default one
// when the root command did not run (e.g. in tests).
func currentApp() *app.App {
	if app.Default == nil {
		app.SetDefault(app.New())
	}
	return app.Default
}

// getConfig returns the loaded configuration.
func getConfig() *config.Config {
	return currentApp().Config
}

// getRuntime returns the application runtime, building it on first use.
func getRuntime() (runtime.SandboxRuntime, error) {
	return currentApp().Runtime()
}
