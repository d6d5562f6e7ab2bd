package worktree

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/keisukeshimizu/gwt/internal/git"
)

// IssueKind classifies a safety issue.
type IssueKind int

const (
	IssueDefaultBranch IssueKind = iota + 1
	IssueStatusFailed
	IssueDirty
	IssueTrackingFailed
	IssueNotPushed
	IssueFetchFailed
	IssueAheadFailed
	IssueAhead
	IssueBehindFailed
	IssueBehind
)

// Issue is one reason a worktree must not be removed.
type Issue struct {
	Kind    IssueKind
	Message string
}

func (i Issue) String() string {
	return i.Message
}

func newIssue(kind IssueKind, format string, args ...interface{}) Issue {
	return Issue{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// countNoun returns "1 commit" or "N commits".
func countNoun(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Evaluator runs the pre-removal safety checks.
type Evaluator struct {
	repo          Repository
	resolver      *Resolver
	defaultBranch string
}

// NewEvaluator creates an evaluator that protects defaultBranch.
func NewEvaluator(repo Repository, defaultBranch string) *Evaluator {
	return &Evaluator{
		repo:          repo,
		resolver:      NewResolver(repo),
		defaultBranch: defaultBranch,
	}
}

// Evaluate checks the worktree name at path and returns the blocking issues
// in a fixed order: default branch, working tree state, tracking ref and
// fetch, ahead count, behind count. An empty result permits removal.
//
// A check that cannot run is itself an issue.
func (e *Evaluator) Evaluate(ctx context.Context, name, path string) []Issue {
	var issues []Issue
	if e.defaultBranch != "" && name == e.defaultBranch {
		issues = append(issues, newIssue(IssueDefaultBranch, "'%s' is the default branch", name))
	}

	var dirty, tracking []Issue
	var g errgroup.Group
	g.Go(func() error {
		dirty = e.checkDirty(ctx, path)
		return nil
	})
	g.Go(func() error {
		tracking = e.checkTracking(ctx, name, path)
		return nil
	})
	_ = g.Wait()

	issues = append(issues, dirty...)
	issues = append(issues, tracking...)
	return issues
}

func (e *Evaluator) checkDirty(ctx context.Context, path string) []Issue {
	out, err := e.repo.Status(ctx, path)
	if err != nil {
		return []Issue{newIssue(IssueStatusFailed, "status check failed: %s", git.Diagnostic(err))}
	}
	if strings.TrimSpace(out) != "" {
		return []Issue{newIssue(IssueDirty, "uncommitted changes in worktree")}
	}
	return nil
}

func (e *Evaluator) checkTracking(ctx context.Context, name, path string) []Issue {
	ref, err := e.resolver.ResolveRemote(ctx, name)
	if err != nil {
		return []Issue{newIssue(IssueTrackingFailed, "tracking ref check failed: %v", err)}
	}
	if ref == "" {
		return []Issue{newIssue(IssueNotPushed, "branch '%s' not pushed to remote", name)}
	}

	remote := strings.TrimSuffix(ref, "/"+name)
	if err := e.repo.Fetch(ctx, remote, name); err != nil {
		return []Issue{newIssue(IssueFetchFailed, "fetch failed: %s", git.Diagnostic(err))}
	}

	ahead, behind := e.divergence(ctx, path, ref)
	return append(ahead, behind...)
}

// divergence counts commits on each side of ref concurrently.
func (e *Evaluator) divergence(ctx context.Context, path, ref string) (ahead, behind []Issue) {
	var g errgroup.Group
	g.Go(func() error {
		n, err := e.repo.CountCommits(ctx, path, ref+"..HEAD")
		switch {
		case err != nil:
			ahead = []Issue{newIssue(IssueAheadFailed, "failed to check ahead count: %s", git.Diagnostic(err))}
		case n > 0:
			ahead = []Issue{newIssue(IssueAhead, "%s", countNoun(n, "unpushed commit"))}
		}
		return nil
	})
	g.Go(func() error {
		n, err := e.repo.CountCommits(ctx, path, "HEAD.."+ref)
		switch {
		case err != nil:
			behind = []Issue{newIssue(IssueBehindFailed, "failed to check behind count: %s", git.Diagnostic(err))}
		case n > 0:
			behind = []Issue{newIssue(IssueBehind, "%s behind remote", countNoun(n, "commit"))}
		}
		return nil
	})
	_ = g.Wait()
	return ahead, behind
}

// SyncStatus is a branch's relation to its remote-tracking ref.
type SyncStatus string

const (
	SyncNoRemote SyncStatus = "no-remote"
	SyncSynced   SyncStatus = "synced"
	SyncAhead    SyncStatus = "ahead"
	SyncBehind   SyncStatus = "behind"
	SyncDiverged SyncStatus = "diverged"
)

// SyncFromCounts derives the sync status from ahead/behind counts against a
// resolved tracking ref.
func SyncFromCounts(ahead, behind int) SyncStatus {
	switch {
	case ahead > 0 && behind > 0:
		return SyncDiverged
	case ahead > 0:
		return SyncAhead
	case behind > 0:
		return SyncBehind
	default:
		return SyncSynced
	}
}
