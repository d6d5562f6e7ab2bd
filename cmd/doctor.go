package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/doctor"
	"github.com/keisukeshimizu/gwt/internal/workspace"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the gwt setup",
	Long: `Check git, the repository layout, gwt's configuration in .bare/config,
stale worktrees, the editor used by 'gwt edit', and the config file.

Exits with status 1 when a check fails.

Examples:
  gwt doctor                       # Table output
  gwt doctor --format simple       # One line per check with suggestions
  gwt doctor --format json         # For scripts`,
	Aliases: []string{"check"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFormat, _ := cmd.Flags().GetString("format")

		// Not being inside a repository is a finding, not an error.
		ws, wsErr := workspace.Discover("")

		manager := configManager()
		cfg, err := manager.Decode()
		if err != nil {
			return err
		}

		result := doctor.NewChecker(ws, wsErr, manager, cfg).CheckSystem(cmd.Context())

		out := cmd.OutOrStdout()
		switch outputFormat {
		case "json":
			fmt.Fprintln(out, result.FormatAsJSON())
		case "simple":
			fmt.Fprint(out, result.FormatAsSimple())
		case "table", "":
			fmt.Fprint(out, result.FormatAsTable())
		default:
			return fmt.Errorf("unknown format %q (valid: table, simple, json)", outputFormat)
		}

		if result.GetOverallStatus() == doctor.CheckStatusFail {
			return &exitError{code: 1}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().String("format", "table", "output format: table, simple, json")
}
