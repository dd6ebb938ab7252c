package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/deskbox/internal/config"
	"github.com/firefly-engineering/deskbox/internal/errors"
	"github.com/firefly-engineering/deskbox/internal/health"
)

var (
	checkNative  bool
	checkDetails bool
)

var (
	checkTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	checkOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	checkMissingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	checkDetailStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				PaddingLeft(4)
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Diagnose sandbox prerequisites",
	Long: `Check that the host has the tooling a sandbox backend needs.

Container mode checks the engine CLI and that its daemon answers.
Native mode checks Xvfb, x11vnc, websockify, and a desktop session manager.
Exits non-zero when anything is missing.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkNative, "native", false, "Check the native toolchain instead of the container engine")
	checkCmd.Flags().BoolVar(&checkDetails, "details", false, "Print additional context for each requirement")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a := currentApp()

	opts := health.CheckOptions{
		Native:   checkNative || a.Config.Runtime == config.RuntimeNative,
		Executor: a.Executor,
	}
	if a.Config.Runtime == config.RuntimePodman {
		opts.Engine = string(config.RuntimePodman)
	}

	report := health.Run(cmd.Context(), opts)
	renderReport(cmd.OutOrStdout(), report, checkDetails)

	if !report.OK() {
		return errors.New(errors.ExitGeneralError, "one or more prerequisites are missing")
	}
	return nil
}

func renderReport(w io.Writer, report *health.Report, details bool) {
	fmt.Fprintln(w, checkTitleStyle.Render("Sandbox prerequisite check ("+report.Mode+")"))

	for _, c := range report.Checks {
		status := checkOKStyle.Render("[OK]")
		if !c.OK {
			status = checkMissingStyle.Render("[MISSING]")
		}
		fmt.Fprintf(w, "%s %s\n", status, c.Name)

		if details {
			fmt.Fprintln(w, checkDetailStyle.Render(c.Description))
			if c.Detail != "" {
				fmt.Fprintln(w, checkDetailStyle.Render(c.Detail))
			}
		}
	}

	fmt.Fprintln(w)
	if report.OK() {
		fmt.Fprintln(w, "All prerequisites satisfied.")
	} else {
		fmt.Fprintln(w, "One or more prerequisites are missing.")
	}
}
