package cmd

import (
	"context"
	"fmt"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/runtime"
)

var execRemove bool

var execCmd = &cobra.Command{
	Use:   "exec -- <command>",
	Short: "Execute command in sandbox",
	Long: `Execute a shell command inside the sandbox through bash -lc.

A single argument is passed to the shell as-is, so pipes and redirects
work when quoted. Multiple arguments are shell-quoted and joined.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().BoolVar(&execRemove, "rm", false, "Destroy the sandbox after the command finishes")
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	rt, err := getRuntime()
	if err != nil {
		return err
	}

	command := args[0]
	if len(args) > 1 {
		command = shellquote.Join(args...)
	}

	output, err := rt.Exec(cmd.Context(), command)
	if execRemove {
		defer func() {
			if err := currentApp().Shutdown(context.WithoutCancel(cmd.Context())); err != nil {
				logError("Failed to destroy sandbox: %v", err)
			}
		}()
	}
	if err != nil {
		return err
	}

	if output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}
	if runtime.IsErrorOutput(output) {
		return errors.New(errors.ExitGeneralError, "command exited with a non-zero status")
	}
	return nil
}
