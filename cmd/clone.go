package cmd

import (
	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/workspace"
)

// cloneCmd represents the clone command
var cloneCmd = &cobra.Command{
	Use:   "clone <url> [dest]",
	Short: "Clone a repository into the gwt layout",
	Long: `Clone a repository as <dest>/.bare, set it up for gwt, and create a
worktree for the default branch at <dest>/<default-branch>.

dest defaults to the repository name from the URL.

Examples:
  gwt clone https://github.com/org/repo.git
  gwt clone git@github.com:org/repo.git work`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := workspace.CloneOptions{URL: args[0]}
		if len(args) == 2 {
			opts.Dest = args[1]
		}

		result, err := workspace.Clone(cmd.Context(), opts)
		if err != nil {
			return err
		}

		logger.Print("")
		logger.Success("Done! Repository cloned to %s/", result.Name)
		logger.Print("  cd %s/%s", result.Name, result.DefaultBranch)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}
