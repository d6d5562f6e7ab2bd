package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/workspace"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up an existing .bare layout for gwt, or upgrade it",
	Long: `Mark a repository with a .bare directory as managed by gwt.

init writes the .git pointer file if missing, configures origin to fetch
all branches with pruning, records the default branch, and stamps the gwt
version. Running it again after upgrading gwt updates the stamp.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := workspace.FindRoot("")
		if err != nil {
			if errors.Is(err, workspace.ErrNotFound) {
				return fmt.Errorf("no .bare directory found; run this command from a bare worktree repository root or inside a worktree")
			}
			return err
		}

		ws := workspace.New(root)
		cfg, err := ws.Config()
		if err != nil {
			return err
		}

		switch {
		case cfg.Version == workspace.Version:
			logger.Print("Already initialized (v%s)", cfg.Version)
			return nil
		case cfg.Version != "":
			logger.Info("Upgrading from v%s to v%s...", cfg.Version, workspace.Version)
		default:
			logger.Info("Initializing gwt...")
		}

		result, err := workspace.Initialize(cmd.Context(), ws)
		if err != nil {
			return err
		}
		if result.CreatedGitFile {
			logger.Print("  Created .git file")
		}
		if result.DefaultBranch != "" {
			logger.Print("  Default branch: %s", result.DefaultBranch)
		}

		logger.Print("")
		logger.Success("Done! Repository initialized for gwt v%s", workspace.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
