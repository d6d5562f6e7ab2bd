package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/logger"
)

// statusConcurrency bounds the number of worktrees inspected at once.
const statusConcurrency = 8

// Filter selects worktrees by state. Filters imply status collection.
type Filter string

const (
	FilterClean    Filter = "clean"
	FilterDirty    Filter = "dirty"
	FilterSynced   Filter = "synced"
	FilterAhead    Filter = "ahead"
	FilterBehind   Filter = "behind"
	FilterNoRemote Filter = "no-remote"
)

var knownFilters = []Filter{FilterClean, FilterDirty, FilterSynced, FilterAhead, FilterBehind, FilterNoRemote}

// ParseFilter converts a flag value into a Filter.
func ParseFilter(s string) (Filter, error) {
	for _, f := range knownFilters {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(knownFilters))
	for i, f := range knownFilters {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown filter %q (valid: %s)", s, strings.Join(names, ", "))
}

// ListOptions contains options for listing worktrees
type ListOptions struct {
	Status  bool     // Collect dirty state and sync status
	Filters []Filter // AND-combined
	Recent  bool     // Most recently modified first
	Root    string   // When set, entry names are slash paths relative to Root
}

// Status is the collected state of a worktree.
type Status struct {
	Dirty  bool
	Sync   SyncStatus
	Ahead  int
	Behind int
	Err    error // Set when the state could not be determined
}

// Entry is a non-bare worktree as shown by `gwt list`.
type Entry struct {
	git.Worktree
	ModTime time.Time
	Status  *Status // nil unless requested
}

// Lister handles worktree listing operations
type Lister struct {
	repo     Repository
	resolver *Resolver
}

// NewLister creates a new Lister instance
func NewLister(repo Repository) *Lister {
	return &Lister{
		repo:     repo,
		resolver: NewResolver(repo),
	}
}

// List returns the non-bare worktrees in git's order, or by modification
// time with opts.Recent.
func (l *Lister) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	worktrees, err := l.repo.ListWorktrees(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(worktrees))
	for _, wt := range worktrees {
		if wt.IsBare {
			continue
		}
		entry := Entry{Worktree: wt}
		if opts.Root != "" {
			entry.Name = relativeName(opts.Root, wt)
		}
		if info, err := os.Stat(wt.Path); err == nil {
			entry.ModTime = info.ModTime()
		}
		entries = append(entries, entry)
	}

	if opts.Status || len(opts.Filters) > 0 {
		if err := l.collectStatus(ctx, entries); err != nil {
			return nil, err
		}
		entries = applyFilters(entries, opts.Filters)
	}

	if opts.Recent {
		SortByRecent(entries)
	}
	return entries, nil
}

// relativeName names a worktree by its path below root so nested names such
// as feature/auth survive. Worktrees outside root keep their base name.
func relativeName(root string, wt git.Worktree) string {
	roots := []string{root}
	if resolved, err := filepath.EvalSymlinks(root); err == nil && resolved != root {
		roots = append(roots, resolved)
	}
	for _, r := range roots {
		rel, err := filepath.Rel(r, wt.Path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel)
	}
	return wt.Name
}

func (l *Lister) collectStatus(ctx context.Context, entries []Entry) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(statusConcurrency)

	for i := range entries {
		i := i
		g.Go(func() error {
			entries[i].Status = l.status(ctx, entries[i].Worktree)
			return ctx.Err()
		})
	}
	return g.Wait()
}

func (l *Lister) status(ctx context.Context, wt git.Worktree) *Status {
	st := &Status{Sync: SyncNoRemote}

	out, err := l.repo.Status(ctx, wt.Path)
	if err != nil {
		logger.Debug("status of %s: %v", wt.Name, err)
		st.Err = err
		return st
	}
	st.Dirty = strings.TrimSpace(out) != ""

	branch, ok := git.BranchName(wt.Branch)
	if !ok {
		return st
	}
	ref, err := l.resolver.ResolveRemote(ctx, branch)
	if err != nil || ref == "" {
		return st
	}

	var g errgroup.Group
	var aheadErr, behindErr error
	g.Go(func() error {
		st.Ahead, aheadErr = l.repo.CountCommits(ctx, wt.Path, ref+"..HEAD")
		return nil
	})
	g.Go(func() error {
		st.Behind, behindErr = l.repo.CountCommits(ctx, wt.Path, "HEAD.."+ref)
		return nil
	})
	_ = g.Wait()

	if aheadErr != nil || behindErr != nil {
		st.Err = fmt.Errorf("failed to compare %s with %s", branch, ref)
		return st
	}
	st.Sync = SyncFromCounts(st.Ahead, st.Behind)
	return st
}

// Matches reports whether the entry satisfies the filter. Entries without
// status never match.
func (f Filter) Matches(e Entry) bool {
	st := e.Status
	if st == nil || st.Err != nil {
		return false
	}
	switch f {
	case FilterClean:
		return !st.Dirty
	case FilterDirty:
		return st.Dirty
	case FilterSynced:
		return st.Sync == SyncSynced
	case FilterAhead:
		return st.Sync == SyncAhead || st.Sync == SyncDiverged
	case FilterBehind:
		return st.Sync == SyncBehind || st.Sync == SyncDiverged
	case FilterNoRemote:
		return st.Sync == SyncNoRemote
	default:
		return false
	}
}

func applyFilters(entries []Entry, filters []Filter) []Entry {
	if len(filters) == 0 {
		return entries
	}
	filtered := entries[:0]
	for _, e := range entries {
		keep := true
		for _, f := range filters {
			if !f.Matches(e) {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// SortByRecent orders entries by modification time, newest first.
func SortByRecent(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
}
