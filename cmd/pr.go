package cmd

import (
	"github.com/spf13/cobra"
)

// prCmd represents the pr command
var prCmd = &cobra.Command{
	Use:   "pr <name>",
	Short: "Open the GitHub pull request of a worktree",
	Long: `Open the pull request for a worktree's branch in the browser using the
GitHub CLI (gh).

Examples:
  gwt pr feature/login             # View the existing pull request
  gwt pr create feature/login      # Start a new pull request`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ghCLI.openReview(cmd.Context(), cmd.OutOrStdout(), args[0], false)
	},
}

var prCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Start a pull request for a worktree's branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ghCLI.openReview(cmd.Context(), cmd.OutOrStdout(), args[0], true)
	},
}

func init() {
	rootCmd.AddCommand(prCmd)
	prCmd.AddCommand(prCreateCmd)
}
