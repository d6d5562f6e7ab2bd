package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/process"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run -w <name> [--] <command> [args...]",
	Short: "Run a command inside a worktree",
	Long: `Run a command with the worktree as its working directory.

Interrupts (Ctrl-C) are passed on to the command, and gwt exits with the
command's exit status.

Examples:
  gwt run -w feature/login -- npm test
  gwt run -w main make build`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("worktree")

		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		entry, err := findWorktree(cmd.Context(), ws, name)
		if err != nil {
			return err
		}

		logger.Command(args[0], args[1:]...)
		child := exec.Command(args[0], args[1:]...)
		child.Dir = entry.Path
		child.Stdin = os.Stdin
		child.Stdout = cmd.OutOrStdout()
		child.Stderr = cmd.ErrOrStderr()

		if err := process.Run(child); err != nil {
			if code := process.ExitCode(err); code >= 0 {
				return &exitError{code: code}
			}
			if process.Interrupted(err) {
				return &exitError{code: interruptedExitCode}
			}
			return fmt.Errorf("failed to run %s: %w", args[0], err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("worktree", "w", "", "worktree to run the command in")
	runCmd.MarkFlagRequired("worktree")
	runCmd.Flags().SetInterspersed(false)
}
