package worktree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/logger"
)

// Outcome is the result of the two-step removal strategy.
type Outcome int

const (
	// Failed means the worktree is still there.
	Failed Outcome = iota
	// Removed means the plain removal succeeded.
	Removed
	// RetriedAndRemoved means the plain removal failed and the forced
	// retry succeeded.
	RetriedAndRemoved
)

func (o Outcome) String() string {
	switch o {
	case Removed:
		return "removed"
	case RetriedAndRemoved:
		return "retried-and-removed"
	default:
		return "failed"
	}
}

// RemovalStrategy removes a worktree directory through git: a plain
// `git worktree remove` first, then `--force` when allowed.
type RemovalStrategy struct {
	repo Repository
}

// Remove runs the strategy. Without force, a plain failure is terminal. An
// interrupted plain removal is never retried.
func (s RemovalStrategy) Remove(ctx context.Context, name string, force bool) (Outcome, error) {
	err := s.repo.RemoveWorktree(ctx, name, false)
	if err == nil {
		return Removed, nil
	}
	if interrupted(ctx, err) {
		return Failed, interruptedError("remove worktree", err)
	}
	if !force {
		return Failed, fmt.Errorf("failed to remove worktree (use --force to override): %w", err)
	}

	logger.Verbose("plain removal of '%s' failed, retrying with --force: %s", name, git.Diagnostic(err))
	if err := s.repo.RemoveWorktree(ctx, name, true); err != nil {
		return Failed, fmt.Errorf("failed to remove worktree: %w", err)
	}
	return RetriedAndRemoved, nil
}

// ItemResult is the outcome of removing one worktree.
type ItemResult struct {
	Name          string
	Path          string
	Outcome       Outcome
	BranchDeleted bool
	Err           error
}

// OK reports whether the worktree was removed.
func (r ItemResult) OK() bool {
	return r.Err == nil && r.Outcome != Failed
}

// BatchResult collects the per-item results of RemoveAll in request order.
type BatchResult struct {
	Items  []ItemResult
	Failed int
}

// Remover enforces the safety gate and removes worktrees.
type Remover struct {
	ws       Workspace
	repo     Repository
	strategy RemovalStrategy
}

// NewRemover creates a new Remover instance
func NewRemover(ws Workspace, repo Repository) *Remover {
	return &Remover{
		ws:       ws,
		repo:     repo,
		strategy: RemovalStrategy{repo: repo},
	}
}

// Remove removes the worktree called name. With force the safety gate is
// skipped and a failed plain removal is retried with --force. The default
// branch is never deleted.
func (r *Remover) Remove(ctx context.Context, name string, force bool) ItemResult {
	result := ItemResult{Name: name}

	if err := ValidateName(name); err != nil {
		result.Err = err
		return result
	}
	if err := r.ws.CheckSetup(); err != nil {
		result.Err = err
		return result
	}

	result.Path = r.ws.WorktreePath(name)
	if info, err := os.Stat(result.Path); err != nil || !info.IsDir() {
		result.Err = &NotFoundError{Name: name}
		return result
	}
	if err := r.checkRegistered(ctx, name, result.Path); err != nil {
		result.Err = err
		return result
	}

	if err := r.ws.Enter(); err != nil {
		result.Err = err
		return result
	}

	defaultBranch := r.ws.DefaultBranch()

	if !force {
		evaluator := NewEvaluator(r.repo, defaultBranch)
		issues := evaluator.Evaluate(ctx, name, result.Path)
		if err := ctx.Err(); err != nil {
			result.Err = interruptedError("safety checks", err)
			return result
		}
		if len(issues) > 0 {
			result.Err = &SafetyViolation{Name: name, Issues: issues}
			return result
		}
	}

	if err := ctx.Err(); err != nil {
		result.Err = interruptedError("remove worktree", err)
		return result
	}

	logger.Verbose("Removing worktree '%s'...", name)
	outcome, err := r.strategy.Remove(ctx, name, force)
	result.Outcome = outcome
	if err != nil {
		result.Err = err
		return result
	}

	if name != defaultBranch && ctx.Err() == nil {
		if err := r.repo.DeleteBranch(ctx, name); err != nil {
			logger.Debug("branch '%s' kept: %s", name, git.Diagnostic(err))
		} else {
			result.BranchDeleted = true
		}
	}

	return result
}

// RemoveAll removes every name in order, each independently of the others.
// progress, when non-nil, is called after each item. The returned error is
// non-nil when at least one item failed; completed removals are kept.
//
// Once the user interrupts, no further names are started and the error
// wraps ErrInterrupted. Items left untouched do not appear in the result.
func (r *Remover) RemoveAll(ctx context.Context, names []string, force bool, progress func(ItemResult)) (*BatchResult, error) {
	batch := &BatchResult{Items: make([]ItemResult, 0, len(names))}

	stopped := false
	for _, name := range names {
		if ctx.Err() != nil {
			stopped = true
			break
		}
		item := r.Remove(ctx, name, force)
		if !item.OK() {
			batch.Failed++
		}
		batch.Items = append(batch.Items, item)
		if progress != nil {
			progress(item)
		}
		if errors.Is(item.Err, ErrInterrupted) {
			stopped = true
			break
		}
	}

	if stopped {
		return batch, fmt.Errorf("stopped after %d of %d %s: %w",
			len(batch.Items), len(names), pluralize(len(names), "worktree"), ErrInterrupted)
	}

	if batch.Failed > 0 {
		return batch, fmt.Errorf("failed to remove %d %s", batch.Failed, pluralize(batch.Failed, "worktree"))
	}
	return batch, nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

// checkRegistered confirms that path is a worktree git knows about, not
// just a directory below the root such as the parent of "feature/login".
func (r *Remover) checkRegistered(ctx context.Context, name, path string) error {
	worktrees, err := r.repo.ListWorktrees(ctx)
	if err != nil {
		if interrupted(ctx, err) {
			return interruptedError("list worktrees", err)
		}
		return fmt.Errorf("failed to list worktrees: %w", err)
	}

	root := r.ws.WorktreePath("")
	var names []string
	for _, wt := range worktrees {
		if wt.IsBare {
			continue
		}
		if sameDir(wt.Path, path) {
			return nil
		}
		names = append(names, relativeName(root, wt))
	}
	return &NotFoundError{Name: name, Suggestions: Suggest(name, names)}
}

func sameDir(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}
