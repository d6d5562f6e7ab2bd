package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/worktree"
)

// lockCmd represents the lock command
var lockCmd = &cobra.Command{
	Use:   "lock <name>",
	Short: "Lock a worktree so it is not pruned",
	Long: `Lock a worktree with 'git worktree lock'. Locked worktrees are kept by
'git worktree prune' and marked as locked in 'gwt list'.

Examples:
  gwt lock feature/login
  gwt lock usb-drive --reason "on removable disk"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		reason, _ := cmd.Flags().GetString("reason")

		manager, err := worktreeManager(cmd, name)
		if err != nil {
			return err
		}
		if err := manager.Lock(cmd.Context(), name, reason); err != nil {
			return err
		}

		if reason != "" {
			logger.Success("Locked '%s': %s", name, reason)
		} else {
			logger.Success("Locked '%s'", name)
		}
		return nil
	},
}

// unlockCmd represents the unlock command
var unlockCmd = &cobra.Command{
	Use:   "unlock <name>",
	Short: "Unlock a worktree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		manager, err := worktreeManager(cmd, name)
		if err != nil {
			return err
		}
		if err := manager.Unlock(cmd.Context(), name); err != nil {
			return err
		}

		logger.Success("Unlocked '%s'", name)
		return nil
	},
}

// moveCmd represents the move command
var moveCmd = &cobra.Command{
	Use:   "move <name> <dest>",
	Short: "Move a worktree to another directory inside the repository",
	Long: `Move a worktree with 'git worktree move'. The destination is relative to
the repository root and must stay inside it.

Examples:
  gwt move feature/login archive/login`,
	Aliases: []string{"mv"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, dest := args[0], args[1]

		manager, err := worktreeManager(cmd, name)
		if err != nil {
			return err
		}
		target, err := manager.Move(cmd.Context(), name, dest)
		if err != nil {
			return err
		}

		logger.Success("Moved '%s' to '%s'", name, filepath.ToSlash(dest))
		logger.Debug("new path: %s", target)
		return nil
	},
}

// worktreeManager opens the workspace and checks that name is a worktree,
// so typos get suggestions instead of git's error.
func worktreeManager(cmd *cobra.Command, name string) (*worktree.Manager, error) {
	if err := worktree.ValidateName(name); err != nil {
		return nil, err
	}
	ws, err := openWorkspace()
	if err != nil {
		return nil, err
	}
	if _, err := findWorktree(cmd.Context(), ws, name); err != nil {
		return nil, err
	}
	return worktree.NewManager(ws, ws.Git(), ws.Root), nil
}

func init() {
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(moveCmd)

	lockCmd.Flags().String("reason", "", "why the worktree is locked")
}
