package worktree

import (
	"context"

	"github.com/keisukeshimizu/gwt/internal/git"
)

// Repository is the set of git operations the worktree engine depends on.
// *git.Client implements it.
type Repository interface {
	ListWorktrees(ctx context.Context) ([]git.Worktree, error)
	LocalBranchExists(ctx context.Context, name string) (bool, error)
	RemoteRefs(ctx context.Context) ([]string, error)
	RemoteConfigured(ctx context.Context, remote string) (bool, error)
	FetchAll(ctx context.Context) error
	Fetch(ctx context.Context, remote, branch string) error
	Status(ctx context.Context, path string) (string, error)
	CountCommits(ctx context.Context, path, revRange string) (int, error)
	AddWorktree(ctx context.Context, args git.AddWorktreeArgs) error
	RemoveWorktree(ctx context.Context, path string, force bool) error
	DeleteBranch(ctx context.Context, name string) error
	LockWorktree(ctx context.Context, path, reason string) error
	UnlockWorktree(ctx context.Context, path string) error
	MoveWorktree(ctx context.Context, path, dest string) error
}

// Workspace is the per-invocation repository context. *workspace.Workspace
// implements it.
type Workspace interface {
	CheckSetup() error
	DefaultBranch() string
	WorktreePath(name string) string
	Enter() error
}

var _ Repository = (*git.Client)(nil)
