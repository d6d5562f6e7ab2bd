package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/editor"
	"github.com/keisukeshimizu/gwt/internal/logger"
)

// cdCmd represents the cd command
var cdCmd = &cobra.Command{
	Use:   "cd <name>",
	Short: "Print the path of a worktree",
	Long: `Print the absolute path of a worktree so a shell can change into it.

A process cannot change its parent shell's directory, so either use
  cd "$(gwt cd <name>)"
or install the wrapper printed by 'gwt shell'.

Examples:
  cd "$(gwt cd feature/login)"
  gwt cd main --open               # Also reveal it in the file manager
  gwt cd main --edit               # Also open it in your editor`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		open, _ := cmd.Flags().GetBool("open")
		edit, _ := cmd.Flags().GetBool("edit")

		ws, err := openWorkspace()
		if err != nil {
			return err
		}
		entry, err := findWorktree(cmd.Context(), ws, args[0])
		if err != nil {
			return err
		}

		if open {
			if err := editor.OpenFileManager(cmd.Context(), entry.Path); err != nil {
				logger.Warning("%v", err)
			}
		}
		if edit {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ide, err := editor.NewDetector(cfg.IDE, ws.Git()).Detect(cmd.Context())
			if err != nil {
				return err
			}
			if err := editor.Open(cmd.Context(), ide, entry.Path, false); err != nil {
				logger.Warning("Failed to open %s", ide)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), entry.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cdCmd)

	cdCmd.Flags().BoolP("open", "o", false, "reveal the worktree in the file manager")
	cdCmd.Flags().BoolP("edit", "e", false, "open the worktree in your editor")
}
