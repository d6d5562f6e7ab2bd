package cmd

import (
	"github.com/spf13/cobra"
)

// mrCmd represents the mr command
var mrCmd = &cobra.Command{
	Use:   "mr <name>",
	Short: "Open the GitLab merge request of a worktree",
	Long: `Open the merge request for a worktree's branch in the browser using the
GitLab CLI (glab).

Examples:
  gwt mr feature/login             # View the existing merge request
  gwt mr create feature/login      # Start a new merge request`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return glabCLI.openReview(cmd.Context(), cmd.OutOrStdout(), args[0], false)
	},
}

var mrCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Start a merge request for a worktree's branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return glabCLI.openReview(cmd.Context(), cmd.OutOrStdout(), args[0], true)
	},
}

func init() {
	rootCmd.AddCommand(mrCmd)
	mrCmd.AddCommand(mrCreateCmd)
}
