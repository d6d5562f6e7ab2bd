package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/autocopy"
	"github.com/keisukeshimizu/gwt/internal/config"
	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/workspace"
	"github.com/keisukeshimizu/gwt/internal/worktree"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a worktree for a branch",
	Long: `Create a worktree at <root>/<name> for the branch <name>.

The branch is chosen in this order:
  1. an existing local branch called <name>
  2. a remote branch <remote>/<name>, checked out with tracking
  3. a new branch started from --from, the default branch, or master

Remotes are fetched first unless --no-fetch is given or 'fetch: false' is
set in the config file. Files listed under 'copy' in the config file are
copied over from the default branch's worktree.

Examples:
  gwt add feature/login              # New or existing branch
  gwt add hotfix --from release-2.1  # New branch from release-2.1
  gwt add review-123 --no-fetch      # Skip fetching remotes`,
	Aliases: []string{"new", "create"},
	Args:    cobra.ExactArgs(1),
	RunE:    runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	from, _ := cmd.Flags().GetString("from")
	noFetch, _ := cmd.Flags().GetBool("no-fetch")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	provisioner := worktree.NewProvisioner(ws, ws.Git())
	result, err := provisioner.Create(cmd.Context(), worktree.CreateOptions{
		Name:    name,
		From:    from,
		NoFetch: noFetch || !cfg.Fetch,
	})
	if err != nil {
		return err
	}

	seedWorktree(cmd.Context(), ws, cfg, result.Path)

	logger.Print("")
	logger.Success("Done! Worktree created at %s/", name)
	logger.Print("  cd %s", name)
	return nil
}

// seedWorktree copies the configured untracked files from the default
// branch's worktree. Failures are reported as warnings.
func seedWorktree(ctx context.Context, ws *workspace.Workspace, cfg *config.Config, dst string) {
	if len(cfg.Copy) == 0 {
		return
	}

	branch := ws.DefaultBranch()
	if branch == "" {
		return
	}
	src := ws.WorktreePath(branch)
	if filepath.Clean(src) == filepath.Clean(dst) {
		return
	}
	if _, err := os.Stat(src); err != nil {
		logger.Debug("no '%s' worktree to copy files from", branch)
		return
	}

	result, err := autocopy.NewCopier().Copy(ctx, src, dst, cfg.Copy)
	if err != nil {
		logger.Warning("failed to copy files from '%s': %v", branch, err)
		return
	}
	for _, rel := range result.Copied {
		logger.Info("  Copied %s", filepath.ToSlash(rel))
	}
	for _, rel := range result.Skipped {
		logger.Verbose("  Skipped %s", filepath.ToSlash(rel))
	}
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().String("from", "", "start a new branch from this branch instead of the default branch")
	addCmd.Flags().Bool("no-fetch", false, "do not fetch remotes first")
}
