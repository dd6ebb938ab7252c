package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/deskbox/internal/runtime"
)

var runtimeCmd = &cobra.Command{
	Use:   "runtime",
	Short: "Show sandbox runtime information",
	Long: `Display information about available and configured sandbox runtimes.

deskbox supports these runtimes:
  - docker:  Docker Engine
  - podman:  Podman, through the same CLI surface
  - native:  Xvfb, x11vnc, websockify, and Xfce on the host

With runtime "auto" the first available one in that order is used.`,
	Args: cobra.NoArgs,
	RunE: runRuntime,
}

func init() {
	rootCmd.AddCommand(runtimeCmd)
}

func runRuntime(cmd *cobra.Command, args []string) error {
	a := currentApp()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Configured runtime: %s\n", a.Config.Runtime)

	detected, err := runtime.Detect(a.Executor)
	if err != nil {
		fmt.Fprintf(out, "Detection failed: %s\n", err)
	} else {
		fmt.Fprintf(out, "Detected runtime: %s\n", detected)
	}

	fmt.Fprintln(out)

	available := runtime.Available(a.Executor)
	fmt.Fprintln(out, "Available runtimes:")
	if len(available) == 0 {
		fmt.Fprintln(out, "  (none)")
	} else {
		for _, rt := range available {
			marker := "  "
			if rt == detected {
				marker = "* "
			}
			fmt.Fprintf(out, "%s%s\n", marker, rt)
		}
	}

	return nil
}
