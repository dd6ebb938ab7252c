package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	urlHost     string
	urlPassword string
)

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the browser URL of the sandbox desktop",
	Long: `Print the browser URL of the sandbox desktop.

The sandbox is started first if it is not running.`,
	Args: cobra.NoArgs,
	RunE: runURL,
}

func init() {
	urlCmd.Flags().StringVar(&urlHost, "host", "localhost", "Host name used in the access URL")
	urlCmd.Flags().StringVar(&urlPassword, "password", "", "Password to embed (default: configured password)")
	rootCmd.AddCommand(urlCmd)
}

func runURL(cmd *cobra.Command, args []string) error {
	rt, err := getRuntime()
	if err != nil {
		return err
	}

	if _, err := rt.EnsureStarted(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), rt.AccessURL(urlHost, urlPassword))
	return nil
}
