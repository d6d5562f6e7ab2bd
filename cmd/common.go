package cmd

import (
	"context"

	"github.com/spf13/viper"

	"github.com/keisukeshimizu/gwt/internal/config"
	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/workspace"
	"github.com/keisukeshimizu/gwt/internal/worktree"
)

func configManager() *config.Manager {
	return config.NewManager(viper.GetViper())
}

func loadConfig() (*config.Config, error) {
	return configManager().Load()
}

// openWorkspace discovers the repository around the current directory and
// verifies it was set up by gwt.
func openWorkspace() (*workspace.Workspace, error) {
	ws, err := workspace.Discover("")
	if err != nil {
		return nil, err
	}
	if err := ws.CheckSetup(); err != nil {
		return nil, err
	}
	if ws.NeedsUpgrade() {
		cfg, _ := ws.Config()
		logger.Warning("repository was set up by gwt v%s, run 'gwt init' to upgrade to v%s", cfg.Version, workspace.Version)
	}
	return ws, nil
}

// findWorktree looks up a worktree by its name below the workspace root.
func findWorktree(ctx context.Context, ws *workspace.Workspace, name string) (worktree.Entry, error) {
	entries, err := worktree.NewLister(ws.Git()).List(ctx, worktree.ListOptions{Root: ws.Root})
	if err != nil {
		return worktree.Entry{}, err
	}
	return worktree.Find(entries, name)
}
