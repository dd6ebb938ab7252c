package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/deskbox/internal/app"
	"github.com/firefly-engineering/deskbox/internal/config"
	"github.com/firefly-engineering/deskbox/internal/logging"
)

var (
	verbose     bool
	jsonOutput  bool
	configFile  string
	runtimeKind string
)

var rootCmd = &cobra.Command{
	Use:   "deskbox",
	Short: "Disposable desktop sandbox manager",
	Long: `deskbox provisions a disposable graphical Linux desktop sandbox that
an agent can drive with shell commands and a human can watch in a browser.

Each sandbox is one of:
  - a container started from a prebuilt image (docker or podman)
  - a native Xvfb/x11vnc/websockify/Xfce stack on the host

Sandboxes are recycled once they outlive their TTL.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, os.Stderr)
		// stdout carries command results such as URLs and exec output.
		logging.SetUserOutput(cmd.ErrOrStderr(), cmd.ErrOrStderr())

		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to load .env", "error", err)
		}

		// Tests inject their own application context.
		if app.Default != nil {
			return nil
		}

		cfg, err := config.Load(config.LoadOptions{File: configFile})
		if err != nil {
			return err
		}
		if runtimeKind != "" {
			cfg.Runtime = config.RuntimeKind(runtimeKind)
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		app.SetDefault(app.New(app.WithConfig(cfg)))
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a TOML config file (default $SANDBOX_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&runtimeKind, "runtime", "", "Sandbox runtime: docker, podman, native, or auto (default $SANDBOX_RUNTIME)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
)
