package worktree

import (
	"context"
	"fmt"
	"os"

	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/logger"
)

// fallbackBranch is the start point for new branches when neither --from
// nor a configured default branch is available.
const fallbackBranch = "master"

// Route is how a new worktree obtained its branch.
type Route int

const (
	// FromLocal attaches the worktree to an existing local branch.
	FromLocal Route = iota + 1
	// FromRemote creates a local branch tracking a remote-tracking ref.
	FromRemote
	// FromNewBranch creates a new branch from a source branch.
	FromNewBranch
)

func (r Route) String() string {
	switch r {
	case FromLocal:
		return "local"
	case FromRemote:
		return "remote"
	case FromNewBranch:
		return "new-branch"
	default:
		return "unknown"
	}
}

// CreateOptions contains options for creating a worktree
type CreateOptions struct {
	Name    string // Worktree directory and branch name
	From    string // Source branch for new branches
	NoFetch bool   // Skip `git fetch --all`
}

// CreateResult describes a created worktree.
type CreateResult struct {
	Name     string
	Path     string
	Route    Route
	Source   string            // Branch or ref the worktree was created from
	Warnings []*NetworkWarning // Downgraded fetch failures
}

// Provisioner decides how to create a worktree and creates it.
type Provisioner struct {
	ws       Workspace
	repo     Repository
	resolver *Resolver
}

// NewProvisioner creates a new Provisioner instance
func NewProvisioner(ws Workspace, repo Repository) *Provisioner {
	return &Provisioner{
		ws:       ws,
		repo:     repo,
		resolver: NewResolver(repo),
	}
}

// Create provisions the worktree described by opts.
//
// Name policy, setup and target-path checks run before any git command.
// Fetch failures are recorded as warnings unless the user interrupted the
// fetch, which stops provisioning with ErrInterrupted. When git fails to
// create the worktree the returned error wraps a *git.ExternalCommandError
// carrying git's diagnostic.
func (p *Provisioner) Create(ctx context.Context, opts CreateOptions) (*CreateResult, error) {
	name := opts.Name
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := p.ws.CheckSetup(); err != nil {
		return nil, err
	}

	path := p.ws.WorktreePath(name)
	if _, err := os.Stat(path); err == nil {
		return nil, &ValidationError{Name: name, Reason: "directory already exists"}
	}

	if err := p.ws.Enter(); err != nil {
		return nil, err
	}

	result := &CreateResult{Name: name, Path: path}

	if !opts.NoFetch {
		logger.Info("Fetching remotes...")
		if err := p.repo.FetchAll(ctx); err != nil {
			if interrupted(ctx, err) {
				return nil, interruptedError("fetch", err)
			}
			warning := &NetworkWarning{Err: err}
			logger.Warning("%s", warning.Error())
			result.Warnings = append(result.Warnings, warning)
		}
	}

	res, err := p.resolver.Resolve(ctx, name)
	if err != nil {
		if interrupted(ctx, err) {
			return nil, interruptedError("resolve branch", err)
		}
		return nil, err
	}

	args := git.AddWorktreeArgs{Path: name}
	switch {
	case res.Local:
		result.Route = FromLocal
		result.Source = name
		args.Commitish = name
		logger.Info("Creating worktree '%s' from existing branch...", name)

	case res.RemoteRef != "":
		result.Route = FromRemote
		result.Source = res.RemoteRef
		args.NewBranch = name
		args.Track = true
		args.Commitish = res.RemoteRef
		logger.Info("Creating worktree '%s' tracking %s...", name, res.RemoteRef)

	default:
		from := p.sourceBranch(opts.From)
		start, err := p.resolver.ResolveRemote(ctx, from)
		if err != nil {
			return nil, err
		}
		if start == "" {
			start = from
		}
		result.Route = FromNewBranch
		result.Source = start
		args.NewBranch = name
		args.NoTrack = true
		args.Commitish = start
		logger.Info("Creating worktree '%s' as new branch from '%s'...", name, start)
	}

	if err := ctx.Err(); err != nil {
		return nil, interruptedError("create worktree", err)
	}
	if err := p.repo.AddWorktree(ctx, args); err != nil {
		if interrupted(ctx, err) {
			return nil, interruptedError("create worktree", err)
		}
		return nil, fmt.Errorf("failed to create worktree: %w", err)
	}

	return result, nil
}

func (p *Provisioner) sourceBranch(from string) string {
	if from != "" {
		return from
	}
	if branch := p.ws.DefaultBranch(); branch != "" {
		return branch
	}
	return fallbackBranch
}
