package security

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keisukeshimizu/gwt/internal/autocopy"
	"github.com/keisukeshimizu/gwt/internal/process"
	"github.com/keisukeshimizu/gwt/internal/workspace"
	"github.com/keisukeshimizu/gwt/internal/worktree"
	"github.com/keisukeshimizu/gwt/test/testutil"
)

func noChdir(string) error { return nil }

func openWorkspace(t *testing.T) (*testutil.TestWorkspace, *workspace.Workspace) {
	t.Helper()
	tw := testutil.NewTestWorkspace(t, "security-test")
	ws, err := workspace.Discover(tw.Root, workspace.WithChdir(noChdir))
	require.NoError(t, err)
	return tw, ws
}

// TestWorktreeNameInjection checks that hostile names never reach git or
// the filesystem.
func TestWorktreeNameInjection(t *testing.T) {
	tw, ws := openWorkspace(t)
	provisioner := worktree.NewProvisioner(ws, ws.Git())

	hostile := []string{
		"../../../etc/passwd",
		"../escape",
		"/tmp/absolute",
		"--upload-pack=touch pwned",
		"-f",
		"branch; rm -rf /",
		"branch && curl evil.example",
		"branch$(rm -rf /)",
		"branch|rm -rf /",
		"branch\x00null",
		"branch\nnewline",
		".bare",
		".git",
	}

	for _, name := range hostile {
		t.Run(name, func(t *testing.T) {
			_, err := provisioner.Create(context.Background(), worktree.CreateOptions{Name: name, NoFetch: true})
			require.Error(t, err)

			var verr *worktree.ValidationError
			assert.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
		})
	}

	assert.NoDirExists(t, filepath.Join(tw.TempDir, "escape"))
	assert.False(t, tw.BranchExists("-f"))
}

// TestCopyPatternTraversal checks that copy patterns cannot read or write
// outside the worktrees.
func TestCopyPatternTraversal(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dst := filepath.Join(base, "dst")
	require.NoError(t, os.MkdirAll(src, 0755))
	require.NoError(t, os.MkdirAll(dst, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.txt"), []byte("secret"), 0600))

	patterns := []string{
		"../secret.txt",
		"../*",
		"config/../../secret.txt",
		`..\secret.txt`,
		"/etc/passwd",
	}
	if runtime.GOOS == "windows" {
		patterns = append(patterns, `C:\Windows\System32\config\sam`)
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			assert.Error(t, autocopy.ValidatePattern(pattern))

			_, err := autocopy.NewCopier().Copy(context.Background(), src, dst, []string{pattern})
			assert.Error(t, err)
		})
	}

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestCopyDoesNotOverwrite checks that seeding a worktree never replaces
// files that are already there.
func TestCopyDoesNotOverwrite(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dst := filepath.Join(base, "dst")
	require.NoError(t, os.MkdirAll(src, 0755))
	require.NoError(t, os.MkdirAll(dst, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".env"), []byte("FROM=source"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dst, ".env"), []byte("FROM=worktree"), 0644))

	result, err := autocopy.NewCopier().Copy(context.Background(), src, dst, []string{".env"})
	require.NoError(t, err)
	assert.Empty(t, result.Copied)

	content, err := os.ReadFile(filepath.Join(dst, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "FROM=worktree", string(content))
}

// TestMoveStaysInsideRoot checks that worktrees cannot be moved out of the
// repository or over its object store.
func TestMoveStaysInsideRoot(t *testing.T) {
	tw, ws := openWorkspace(t)
	tw.Git(tw.Root, "branch", "feature/move")
	tw.AddWorktree("feature/move")

	manager := worktree.NewManager(ws, ws.Git(), ws.Root)

	destinations := []string{
		"../outside",
		"archive/../../outside",
		filepath.Join(tw.TempDir, "absolute"),
		".",
		".bare/hidden",
		".git",
	}
	for _, dest := range destinations {
		t.Run(dest, func(t *testing.T) {
			_, err := manager.Move(context.Background(), "feature/move", dest)
			require.Error(t, err)

			var verr *worktree.ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}

	assert.DirExists(t, tw.WorktreePath("feature/move"))
	assert.NoDirExists(t, filepath.Join(tw.TempDir, "outside"))
}

// TestRunPassesArgumentsVerbatim checks that commands are executed without
// a shell, so arguments are never expanded.
func TestRunPassesArgumentsVerbatim(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses echo from PATH")
	}
	echo, err := exec.LookPath("echo")
	if err != nil {
		t.Skip("echo not available")
	}

	var out bytes.Buffer
	cmd := exec.Command(echo, "$(whoami)", "`id`", "a;b")
	cmd.Stdout = &out
	require.NoError(t, process.Run(cmd))

	assert.Equal(t, "$(whoami) `id` a;b\n", out.String())
}
