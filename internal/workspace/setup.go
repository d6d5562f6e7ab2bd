package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/logger"
)

const (
	originFetchSpec = "+refs/heads/*:refs/remotes/origin/*"
	gitdirPointer   = "gitdir: ./" + bareDir + "\n"
)

// InitResult reports what Initialize changed.
type InitResult struct {
	PreviousVersion string // Version recorded before this run, "" when new
	AlreadyCurrent  bool   // Nothing to do, the repository is on Version
	CreatedGitFile  bool
	DefaultBranch   string // Detected default branch, "" when already set
}

// Initialize marks the repository at ws.Root as gwt-managed: it writes the
// .git pointer, configures origin's fetch refspec and pruning, records the
// default branch and stamps the current version.
func Initialize(ctx context.Context, ws *Workspace) (*InitResult, error) {
	cfg, err := ws.Config()
	if err != nil {
		return nil, err
	}

	result := &InitResult{PreviousVersion: cfg.Version}
	if cfg.Version == Version {
		result.AlreadyCurrent = true
		return result, nil
	}

	if err := ws.Enter(); err != nil {
		return nil, err
	}

	gitFilePath := filepath.Join(ws.Root, gitFile)
	if _, err := os.Stat(gitFilePath); os.IsNotExist(err) {
		if err := os.WriteFile(gitFilePath, []byte(gitdirPointer), 0644); err != nil {
			return nil, fmt.Errorf("failed to create .git file: %w", err)
		}
		result.CreatedGitFile = true
	}

	if err := configureRemote(ctx, ws.git); err != nil {
		return nil, err
	}

	if cfg.DefaultBranch == "" {
		result.DefaultBranch = ws.git.DetectDefaultBranch(ctx)
		if err := ws.SetConfig(ctx, "defaultBranch", result.DefaultBranch); err != nil {
			return nil, err
		}
	}

	if err := ws.SetConfig(ctx, "version", Version); err != nil {
		return nil, err
	}
	return result, nil
}

func configureRemote(ctx context.Context, client *git.Client) error {
	if err := client.ConfigSet(ctx, "remote.origin.fetch", originFetchSpec); err != nil {
		return fmt.Errorf("failed to configure fetch refspec: %w", err)
	}
	if err := client.ConfigSet(ctx, "fetch.prune", "true"); err != nil {
		logger.Debug("fetch.prune not set: %s", git.Diagnostic(err))
	}
	return nil
}

// RepoName derives a directory name from a clone URL: the last path
// segment without a trailing ".git".
func RepoName(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}

// CloneOptions describes a `gwt clone` invocation.
type CloneOptions struct {
	URL  string
	Dest string // Directory name, derived from URL when empty
	Dir  string // Parent directory, the current directory when empty
}

// CloneResult describes a freshly cloned workspace.
type CloneResult struct {
	Workspace     *Workspace
	Name          string
	DefaultBranch string
}

// Clone creates a new gwt layout: a bare clone in <dest>/.bare, the .git
// pointer, origin configuration, a full fetch and a worktree for the
// default branch.
func Clone(ctx context.Context, opts CloneOptions, wsOpts ...Option) (*CloneResult, error) {
	name := opts.Dest
	if name == "" {
		name = RepoName(opts.URL)
	}
	if name == "" {
		return nil, fmt.Errorf("cannot derive a directory name from '%s'", opts.URL)
	}

	parent := opts.Dir
	if parent == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		parent = wd
	}

	root := filepath.Join(parent, name)
	if _, err := os.Stat(root); err == nil {
		return nil, fmt.Errorf("directory '%s' already exists", name)
	}

	logger.Info("Cloning %s into %s/", opts.URL, name)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", root, err)
	}

	ws := New(root, wsOpts...)

	logger.Info("  Creating bare repository...")
	if err := ws.git.CloneBare(ctx, opts.URL, bareDir); err != nil {
		_ = os.RemoveAll(root)
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	if err := os.WriteFile(filepath.Join(root, gitFile), []byte(gitdirPointer), 0644); err != nil {
		return nil, fmt.Errorf("failed to create .git file: %w", err)
	}

	logger.Info("  Configuring repository...")
	if err := configureRemote(ctx, ws.git); err != nil {
		return nil, err
	}

	logger.Info("  Fetching branches...")
	if err := ws.git.FetchRemote(ctx, "origin"); err != nil {
		return nil, fmt.Errorf("failed to fetch branches: %w", err)
	}

	defaultBranch := ws.git.DetectDefaultBranch(ctx)
	if err := ws.SetConfig(ctx, "version", Version); err != nil {
		return nil, err
	}
	if err := ws.SetConfig(ctx, "defaultBranch", defaultBranch); err != nil {
		return nil, err
	}
	logger.Info("  Default branch: %s", defaultBranch)

	logger.Info("  Creating worktree '%s'...", defaultBranch)
	args := git.AddWorktreeArgs{Path: defaultBranch, Commitish: defaultBranch}
	if err := ws.git.AddWorktree(ctx, args); err != nil {
		return nil, fmt.Errorf("failed to create worktree: %w", err)
	}

	return &CloneResult{Workspace: ws, Name: name, DefaultBranch: defaultBranch}, nil
}
