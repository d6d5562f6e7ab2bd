package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/worktree"
)

// rmCmd represents the rm command
var rmCmd = &cobra.Command{
	Use:   "rm <name>...",
	Short: "Remove worktrees that hold no unsaved work",
	Long: `Remove one or more worktrees and their merged local branches.

A worktree is only removed when it has no uncommitted changes, its branch
exists on a remote, it has no unpushed commits and is not behind the
remote, and it is not the default branch. --force skips these checks and
retries a failed removal with 'git worktree remove --force'.

Each name is handled on its own: a failure does not undo earlier removals.

Examples:
  gwt rm feature/login             # Remove if safe
  gwt rm old-1 old-2 old-3         # Remove several
  gwt rm experiment --force        # Remove regardless of state`,
	Aliases: []string{"remove", "delete"},
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		remover := worktree.NewRemover(ws, ws.Git())
		_, err = remover.RemoveAll(cmd.Context(), args, force, reportRemoval)
		return err
	},
}

func reportRemoval(item worktree.ItemResult) {
	if item.OK() {
		logger.Success("Done! Worktree '%s' removed", item.Name)
		if item.Outcome == worktree.RetriedAndRemoved {
			logger.Verbose("  '%s' needed --force", item.Name)
		}
		if item.BranchDeleted {
			logger.Print("  Branch '%s' also deleted", item.Name)
		}
		return
	}

	var violation *worktree.SafetyViolation
	if errors.As(item.Err, &violation) {
		logger.Error("Cannot remove '%s' due to safety checks:", item.Name)
		for _, issue := range violation.Issues {
			logger.Error("  - %s", issue.Message)
		}
		logger.Error("Use --force to override (at your own risk)")
		return
	}
	logger.Error("Cannot remove '%s': %v", item.Name, item.Err)
}

func init() {
	rootCmd.AddCommand(rmCmd)

	rmCmd.Flags().BoolP("force", "f", false, "skip safety checks and force removal")
}
