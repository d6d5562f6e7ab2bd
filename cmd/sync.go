package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/process"
	"github.com/keisukeshimizu/gwt/internal/worktree"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync <name>",
	Short: "Fetch and rebase a worktree onto its upstream",
	Long: `Fetch all remotes, then run 'git pull --rebase' in the worktree.

A failed fetch is reported as a warning and the pull still runs.

Examples:
  gwt sync main
  gwt sync feature/login --no-fetch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noFetch, _ := cmd.Flags().GetBool("no-fetch")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		if err := ws.Enter(); err != nil {
			return err
		}

		client := ws.Git()
		if !noFetch && cfg.Fetch {
			logger.Info("Fetching remotes...")
			if err := client.FetchAll(cmd.Context()); err != nil {
				if cmd.Context().Err() != nil || process.Interrupted(err) {
					return fmt.Errorf("fetch: %w", worktree.ErrInterrupted)
				}
				logger.Warning("Failed to fetch remotes")
				logger.Debug("%s", git.Diagnostic(err))
			}
		}

		entry, err := findWorktree(cmd.Context(), ws, args[0])
		if err != nil {
			return err
		}
		if _, attached := git.BranchName(entry.Branch); !attached {
			return fmt.Errorf("'%s' is in detached HEAD state, nothing to sync", entry.Name)
		}

		logger.Info("Syncing '%s'...", entry.Name)
		out, err := client.PullRebase(cmd.Context(), entry.Path)
		if err != nil {
			return fmt.Errorf("failed to sync '%s': %w", entry.Name, err)
		}
		if out = strings.TrimSpace(out); out != "" {
			logger.Print("%s", out)
		}

		logger.Success("Done! '%s' is up to date", entry.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().Bool("no-fetch", false, "do not fetch remotes first")
}
