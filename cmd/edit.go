package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/editor"
	"github.com/keisukeshimizu/gwt/internal/logger"
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Open a worktree in your editor",
	Long: `Open a worktree in your editor.

The editor is the first of:
  1. 'ide' in the gwt config file
  2. git config gwt.ide
  3. $VISUAL
  4. zed, nvim, cursor or code, whichever is on PATH first
  5. $EDITOR

Examples:
  gwt edit feature/login
  gwt edit main --add              # Add to the open VS Code/Cursor window`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		add, _ := cmd.Flags().GetBool("add")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		entry, err := findWorktree(cmd.Context(), ws, args[0])
		if err != nil {
			return err
		}

		ide, err := editor.NewDetector(cfg.IDE, ws.Git()).Detect(cmd.Context())
		if err != nil {
			return err
		}
		if err := editor.Open(cmd.Context(), ide, entry.Path, add); err != nil {
			logger.Warning("Failed to open %s", ide)
		}

		fmt.Fprintln(cmd.OutOrStdout(), entry.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().Bool("add", false, "add the folder to the current window (code and cursor only)")
}
