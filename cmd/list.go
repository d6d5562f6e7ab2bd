package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/worktree"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List worktrees",
	Long: `List the worktrees of the repository.

--status adds each worktree's state: uncommitted changes and how it
compares with its remote branch. --filter narrows the list and implies
--status; several filters must all match.

Filters: clean, dirty, synced, ahead, behind, no-remote
Formats: table, names, json, yaml

Examples:
  gwt list                         # Table in git's order
  gwt list --status --recent       # With state, newest first
  gwt list --filter dirty          # Worktrees with local changes
  gwt list --format json           # For scripts`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		status, _ := cmd.Flags().GetBool("status")
		filterFlags, _ := cmd.Flags().GetStringSlice("filter")
		recent, _ := cmd.Flags().GetBool("recent")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if formatFlag == "" {
			formatFlag = cfg.Format
		}
		format, err := worktree.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		var filters []worktree.Filter
		for _, f := range filterFlags {
			filter, err := worktree.ParseFilter(f)
			if err != nil {
				return err
			}
			filters = append(filters, filter)
		}

		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		entries, err := worktree.NewLister(ws.Git()).List(cmd.Context(), worktree.ListOptions{
			Status:  status,
			Filters: filters,
			Recent:  recent,
			Root:    ws.Root,
		})
		if err != nil {
			return err
		}

		if len(entries) == 0 && format == worktree.FormatTable {
			logger.Print("No worktrees found")
			return nil
		}
		return worktree.Render(cmd.OutOrStdout(), format, entries, time.Now())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("format", "", "output format: table, names, json, yaml (default from config)")
	listCmd.Flags().BoolP("status", "s", false, "show dirty state and sync status")
	listCmd.Flags().StringSlice("filter", nil, "only show worktrees matching these states")
	listCmd.Flags().BoolP("recent", "r", false, "sort by last modification, newest first")
}
