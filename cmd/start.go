package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startHost string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sandbox and print its URL",
	Args:  cobra.NoArgs,
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&startHost, "host", "localhost", "Host name used in the access URL")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	rt, err := getRuntime()
	if err != nil {
		return err
	}

	id, err := rt.EnsureStarted(cmd.Context())
	if err != nil {
		return err
	}

	logSuccess("Sandbox %s is running (%s)", id, rt.Name())
	fmt.Fprintln(cmd.OutOrStdout(), rt.AccessURL(startHost, ""))
	return nil
}
