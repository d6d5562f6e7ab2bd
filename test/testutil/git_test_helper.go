package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestWorkspace is a gwt-style repository on disk: a bare object store at
// Root/.bare cloned from a bare Origin, a .git pointer file, and a worktree
// for the default branch. Seed is a regular clone of Origin used to publish
// commits and branches "from elsewhere".
type TestWorkspace struct {
	TempDir       string
	Root          string
	Origin        string
	Seed          string
	DefaultBranch string
	t             *testing.T
}

// RequireGit skips the test when git is not on PATH.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// NewTestWorkspace creates an origin with one commit on "main" and a
// gwt-managed workspace cloned from it.
func NewTestWorkspace(t *testing.T, projectName string) *TestWorkspace {
	t.Helper()
	RequireGit(t)

	tempDir := t.TempDir()
	ws := &TestWorkspace{
		TempDir:       tempDir,
		Root:          filepath.Join(tempDir, projectName),
		Origin:        filepath.Join(tempDir, "origin.git"),
		Seed:          filepath.Join(tempDir, "seed"),
		DefaultBranch: "main",
		t:             t,
	}

	ws.initializeOrigin()
	ws.initializeWorkspace()
	return ws
}

func (w *TestWorkspace) initializeOrigin() {
	require.NoError(w.t, os.MkdirAll(w.Seed, 0755))
	w.Git(w.Seed, "init", "-b", w.DefaultBranch)
	configureUser(w, w.Seed)

	w.CreateFile(w.Seed, "README.md", "# Test Project\n")
	w.CommitAll(w.Seed, "Initial commit")

	w.Git(w.TempDir, "clone", "--bare", w.Seed, w.Origin)
	w.Git(w.Seed, "remote", "add", "origin", w.Origin)
	w.Git(w.Seed, "fetch", "origin")
	w.Git(w.Seed, "branch", "--set-upstream-to=origin/"+w.DefaultBranch)
}

func (w *TestWorkspace) initializeWorkspace() {
	require.NoError(w.t, os.MkdirAll(w.Root, 0755))
	w.Git(w.Root, "clone", "--bare", w.Origin, ".bare")
	require.NoError(w.t, os.WriteFile(filepath.Join(w.Root, ".git"), []byte("gitdir: ./.bare\n"), 0644))

	w.Git(w.Root, "config", "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*")
	w.Git(w.Root, "config", "fetch.prune", "true")
	configureUser(w, w.Root)
	w.Git(w.Root, "fetch", "origin")
	w.Git(w.Root, "config", "gwt.version", "1.0.0")
	w.Git(w.Root, "config", "gwt.defaultBranch", w.DefaultBranch)
	w.Git(w.Root, "worktree", "add", w.DefaultBranch, w.DefaultBranch)
}

func configureUser(w *TestWorkspace, dir string) {
	w.Git(dir, "config", "user.name", "Test User")
	w.Git(dir, "config", "user.email", "test@example.com")
	w.Git(dir, "config", "commit.gpgsign", "false")
}

// WorktreePath returns the directory of the named worktree.
func (w *TestWorkspace) WorktreePath(name string) string {
	return filepath.Join(w.Root, name)
}

// PublishBranch creates branch on the origin with one extra commit, as if
// another clone had pushed it.
func (w *TestWorkspace) PublishBranch(branch string) {
	w.Git(w.Seed, "checkout", "-b", branch, w.DefaultBranch)
	w.CreateFile(w.Seed, strings.ReplaceAll(branch, "/", "-")+".txt", branch+"\n")
	w.CommitAll(w.Seed, "Add "+branch)
	w.Git(w.Seed, "push", "origin", branch)
	w.Git(w.Seed, "checkout", w.DefaultBranch)
}

// PushUpstreamCommit adds a commit to branch on the origin.
func (w *TestWorkspace) PushUpstreamCommit(branch, file string) {
	w.Git(w.Seed, "fetch", "origin")
	w.Git(w.Seed, "checkout", "-B", branch, "origin/"+branch)
	w.CreateFile(w.Seed, file, "upstream\n")
	w.CommitAll(w.Seed, "Upstream change to "+file)
	w.Git(w.Seed, "push", "origin", branch)
	w.Git(w.Seed, "checkout", w.DefaultBranch)
}

// Fetch updates the workspace's remote-tracking refs.
func (w *TestWorkspace) Fetch() {
	w.Git(w.Root, "fetch", "origin")
}

// AddWorktree checks out an existing local branch into Root/<branch>.
func (w *TestWorkspace) AddWorktree(branch string) string {
	w.Git(w.Root, "worktree", "add", branch, branch)
	return w.WorktreePath(branch)
}

// CreateFile creates a file below dir.
func (w *TestWorkspace) CreateFile(dir, relativePath, content string) {
	fullPath := filepath.Join(dir, relativePath)
	require.NoError(w.t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(w.t, os.WriteFile(fullPath, []byte(content), 0644))
}

// CommitAll commits all changes in dir.
func (w *TestWorkspace) CommitAll(dir, message string) {
	w.Git(dir, "add", "-A")
	w.Git(dir, "commit", "-m", message)
}

// BranchExists checks if a local branch exists in the workspace.
func (w *TestWorkspace) BranchExists(branch string) bool {
	cmd := exec.Command("git", "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	cmd.Dir = w.Root
	return cmd.Run() == nil
}

// Git runs git in dir and returns trimmed stdout, failing the test on error.
func (w *TestWorkspace) Git(dir string, args ...string) string {
	w.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_CONFIG_NOSYSTEM=1")
	output, err := cmd.CombinedOutput()
	if err != nil {
		w.t.Fatalf("Git command failed: git %v\nOutput: %s\nError: %v", args, output, err)
	}
	return strings.TrimSpace(string(output))
}
