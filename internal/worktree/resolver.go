package worktree

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/keisukeshimizu/gwt/internal/logger"
)

const preferredRemote = "origin"

// Resolution is the outcome of looking a name up both locally and on the
// remotes.
type Resolution struct {
	Local     bool
	RemoteRef string // "" when no remote-tracking ref matched
}

// Resolver finds the branch or remote-tracking ref a worktree name refers to.
type Resolver struct {
	repo Repository
}

// NewResolver creates a new Resolver instance
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveLocal reports whether a local branch named exactly name exists.
func (r *Resolver) ResolveLocal(ctx context.Context, name string) (bool, error) {
	return r.repo.LocalBranchExists(ctx, name)
}

// ResolveRemote returns the remote-tracking ref for name, or "" if none of
// the configured remotes has one. origin wins over other remotes; otherwise
// the first validated ref in enumeration order is used.
func (r *Resolver) ResolveRemote(ctx context.Context, name string) (string, error) {
	refs, err := r.repo.RemoteRefs(ctx)
	if err != nil {
		logger.Debug("remote ref enumeration failed: %v", err)
		return "", ctx.Err()
	}

	suffix := "/" + name
	var candidates []string
	for _, ref := range refs {
		if strings.HasSuffix(ref, suffix) && !strings.HasSuffix(ref, "/HEAD") {
			candidates = append(candidates, ref)
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}

	// Remote names may contain slashes, so the remote is whatever precedes
	// the "/<name>" suffix.
	valid := make([]bool, len(candidates))
	var g errgroup.Group
	for i, ref := range candidates {
		i := i
		remote := ref[:len(ref)-len(suffix)]
		if remote == "" {
			continue
		}
		g.Go(func() error {
			ok, err := r.repo.RemoteConfigured(ctx, remote)
			if err != nil {
				logger.Debug("checking remote %s: %v", remote, err)
				return nil
			}
			valid[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	first := ""
	for i, ref := range candidates {
		if !valid[i] {
			continue
		}
		if ref == preferredRemote+suffix {
			return ref, nil
		}
		if first == "" {
			first = ref
		}
	}
	return first, nil
}

// Resolve runs both lookups concurrently and returns once both finished.
func (r *Resolver) Resolve(ctx context.Context, name string) (Resolution, error) {
	var res Resolution
	var g errgroup.Group

	g.Go(func() error {
		local, err := r.ResolveLocal(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check local branch '%s': %w", name, err)
		}
		res.Local = local
		return nil
	})
	g.Go(func() error {
		ref, err := r.ResolveRemote(ctx, name)
		if err != nil {
			return err
		}
		res.RemoteRef = ref
		return nil
	})

	if err := g.Wait(); err != nil {
		return Resolution{}, err
	}
	return res, nil
}
