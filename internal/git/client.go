package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Client performs git operations against a single repository root.
type Client struct {
	runner Runner
	dir    string
}

// NewClient creates a client that runs the git binary in dir.
func NewClient(dir string) *Client {
	return NewClientWithRunner(dir, ExecRunner{})
}

// NewClientWithRunner creates a client backed by the given runner.
func NewClientWithRunner(dir string, runner Runner) *Client {
	return &Client{runner: runner, dir: dir}
}

// Dir returns the directory git commands run in by default.
func (c *Client) Dir() string {
	return c.dir
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	return c.runner.Run(ctx, c.dir, args...)
}

// ListWorktrees returns all worktrees known to the repository, including the
// bare entry.
func (c *Client) ListWorktrees(ctx context.Context) ([]Worktree, error) {
	out, err := c.run(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	return ParseWorktreeList(out), nil
}

// LocalBranchExists checks if refs/heads/<name> exists.
func (c *Client) LocalBranchExists(ctx context.Context, name string) (bool, error) {
	_, err := c.run(ctx, "show-ref", "--verify", "--quiet", headsPrefix+name)
	if err != nil {
		if IsExitStatus(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check branch existence: %w", err)
	}
	return true, nil
}

// RemoteRefs lists remote-tracking refs in short form (e.g. "origin/main").
func (c *Client) RemoteRefs(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "for-each-ref", "--format=%(refname:short)", "refs/remotes")
	if err != nil {
		return nil, fmt.Errorf("failed to list remote refs: %w", err)
	}
	return splitLines(out), nil
}

// RemoteConfigured reports whether a remote with the given name exists.
func (c *Client) RemoteConfigured(ctx context.Context, remote string) (bool, error) {
	_, err := c.run(ctx, "remote", "get-url", remote)
	if err != nil {
		if IsExitStatus(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check remote %s: %w", remote, err)
	}
	return true, nil
}

// FetchAll fetches every configured remote.
func (c *Client) FetchAll(ctx context.Context) error {
	_, err := c.run(ctx, "fetch", "--all")
	return err
}

// Fetch fetches a single branch from remote.
func (c *Client) Fetch(ctx context.Context, remote, branch string) error {
	_, err := c.run(ctx, "fetch", remote, branch)
	return err
}

// Status returns `git status --porcelain` output for the worktree at path.
func (c *Client) Status(ctx context.Context, path string) (string, error) {
	return c.runner.Run(ctx, path, "status", "--porcelain")
}

// CountCommits returns `git rev-list --count <revRange>` evaluated in path.
func (c *Client) CountCommits(ctx context.Context, path, revRange string) (int, error) {
	out, err := c.runner.Run(ctx, path, "rev-list", "--count", revRange)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", strings.TrimSpace(out), err)
	}
	return n, nil
}

// AddWorktreeArgs describes a `git worktree add` invocation.
type AddWorktreeArgs struct {
	Path      string // Worktree directory, relative to the client dir or absolute
	NewBranch string // Create this branch (-b) when set
	Track     bool   // Pass --track
	NoTrack   bool   // Pass --no-track
	Commitish string // Branch or start point
}

// Args returns the git arguments for the invocation.
func (a AddWorktreeArgs) Args() []string {
	args := []string{"worktree", "add"}
	if a.Track {
		args = append(args, "--track")
	}
	if a.NoTrack {
		args = append(args, "--no-track")
	}
	if a.NewBranch != "" {
		args = append(args, "-b", a.NewBranch)
	}
	args = append(args, a.Path)
	if a.Commitish != "" {
		args = append(args, a.Commitish)
	}
	return args
}

// AddWorktree creates a worktree.
func (c *Client) AddWorktree(ctx context.Context, a AddWorktreeArgs) error {
	_, err := c.run(ctx, a.Args()...)
	return err
}

// RemoveWorktree removes the worktree at path, optionally with --force.
func (c *Client) RemoveWorktree(ctx context.Context, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := c.run(ctx, args...)
	return err
}

// DeleteBranch deletes a fully merged local branch (git branch -d).
func (c *Client) DeleteBranch(ctx context.Context, name string) error {
	_, err := c.run(ctx, "branch", "-d", name)
	return err
}

// LockWorktree locks a worktree with an optional reason.
func (c *Client) LockWorktree(ctx context.Context, path, reason string) error {
	args := []string{"worktree", "lock", path}
	if reason != "" {
		args = append(args, "--reason", reason)
	}
	_, err := c.run(ctx, args...)
	return err
}

// UnlockWorktree unlocks a worktree.
func (c *Client) UnlockWorktree(ctx context.Context, path string) error {
	_, err := c.run(ctx, "worktree", "unlock", path)
	return err
}

// MoveWorktree moves a worktree to dest.
func (c *Client) MoveWorktree(ctx context.Context, path, dest string) error {
	_, err := c.run(ctx, "worktree", "move", path, dest)
	return err
}

// PullRebase runs `git pull --rebase` inside the worktree at path.
func (c *Client) PullRebase(ctx context.Context, path string) (string, error) {
	return c.runner.Run(ctx, path, "pull", "--rebase")
}

// ConfigGet reads a config value. Missing keys yield "" and no error.
func (c *Client) ConfigGet(ctx context.Context, key string) (string, error) {
	out, err := c.run(ctx, "config", "--get", key)
	if err != nil {
		if IsExitStatus(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ConfigSet writes a config value to the repository config.
func (c *Client) ConfigSet(ctx context.Context, key, value string) error {
	_, err := c.run(ctx, "config", key, value)
	return err
}

// CloneBare clones url as a bare repository into dest.
func (c *Client) CloneBare(ctx context.Context, url, dest string) error {
	_, err := c.run(ctx, "clone", "--bare", url, dest)
	return err
}

// FetchRemote fetches a whole remote.
func (c *Client) FetchRemote(ctx context.Context, remote string) error {
	_, err := c.run(ctx, "fetch", remote)
	return err
}

// defaultBranchCandidates are probed on origin when origin/HEAD is unset.
var defaultBranchCandidates = []string{"master", "main", "trunk", "develop", "default"}

// DetectDefaultBranch works out the repository's default branch from origin.
// It falls back to init.defaultBranch and finally "master".
func (c *Client) DetectDefaultBranch(ctx context.Context) string {
	if out, err := c.run(ctx, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		if name := strings.TrimPrefix(strings.TrimSpace(out), "refs/remotes/origin/"); name != "" {
			return name
		}
	}

	for _, branch := range defaultBranchCandidates {
		if _, err := c.run(ctx, "show-ref", "--verify", "refs/remotes/origin/"+branch); err == nil {
			return branch
		}
	}

	if out, err := c.run(ctx, "branch", "-r"); err == nil {
		for _, line := range splitLines(out) {
			if strings.Contains(line, "->") {
				continue
			}
			return strings.Replace(line, "origin/", "", 1)
		}
	}

	if branch, err := c.ConfigGet(ctx, "init.defaultBranch"); err == nil && branch != "" {
		return branch
	}

	return "master"
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
