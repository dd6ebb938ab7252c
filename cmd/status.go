package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/deskbox/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show detailed status of the sandbox",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := getRuntime()
	if err != nil {
		return err
	}

	info, err := rt.Status(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	now := time.Now()

	fmt.Fprintf(out, "Runtime: %s\n", info.Backend)
	fmt.Fprintf(out, "Status: %s\n", health.GetSummary(info))
	if info.ID == "" {
		return nil
	}

	fmt.Fprintf(out, "Sandbox: %s\n", info.ID)
	fmt.Fprintf(out, "Running: %s\n", boolStatus(info.Running))
	fmt.Fprintf(out, "Uptime: %s\n", health.GetUptime(info, now))
	fmt.Fprintf(out, "Recycles in: %s\n", health.GetRemaining(info, now))
	if info.Workspace != "" {
		fmt.Fprintf(out, "Workspace: %s\n", info.Workspace)
	}

	if len(info.Processes) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Processes:")
		for _, p := range info.Processes {
			fmt.Fprintf(out, "  %-22s pid %-7d %s\n", p.Name, p.Pid, p.State)
		}
	}

	return nil
}

func boolStatus(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}
