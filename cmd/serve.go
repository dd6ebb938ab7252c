package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/deskbox/internal/api"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the sandbox lifecycle over HTTP.

Routes:
  GET  /health
  POST /sandbox/start?host=<host>
  GET  /sandbox/url?host=<host>
  POST /sandbox/exec      {"command": "..."}
  POST /sandbox/stop
  GET  /sandbox/status

The sandbox is destroyed when the server shuts down.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address (default $SANDBOX_LISTEN or 0.0.0.0:8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := getRuntime()
	if err != nil {
		return err
	}

	addr := serveListen
	if addr == "" {
		addr = getConfig().Listen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logInfo("Serving %s sandbox API on %s", rt.Name(), addr)
	return api.New(rt, addr, api.WithTeardown(func(ctx context.Context) error {
		if err := currentApp().Shutdown(ctx); err != nil {
			logError("Failed to destroy sandbox: %v", err)
			return err
		}
		return nil
	})).Run(ctx)
}
