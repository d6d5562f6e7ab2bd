package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keisukeshimizu/gwt/test/testutil"
)

func noChdir(string) error { return nil }

func TestRepoName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/org/repo.git", "repo"},
		{"https://github.com/org/repo", "repo"},
		{"https://github.com/org/repo/", "repo"},
		{"git@github.com:org/repo.git", "repo"},
		{"git@host:repo.git", "repo"},
		{"/srv/git/project.git", "project"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, RepoName(tt.url))
		})
	}
}

func TestClone(t *testing.T) {
	tw := testutil.NewTestWorkspace(t, "source")
	parent := t.TempDir()

	t.Run("creates the layout", func(t *testing.T) {
		result, err := Clone(context.Background(), CloneOptions{URL: tw.Origin, Dir: parent}, WithChdir(noChdir))
		require.NoError(t, err)

		assert.Equal(t, "origin", result.Name)
		assert.Equal(t, "main", result.DefaultBranch)

		root := filepath.Join(parent, "origin")
		content, err := os.ReadFile(filepath.Join(root, ".git"))
		require.NoError(t, err)
		assert.Equal(t, "gitdir: ./.bare\n", string(content))
		assert.DirExists(t, filepath.Join(root, ".bare"))
		assert.FileExists(t, filepath.Join(root, "main", "README.md"))

		cfg, err := result.Workspace.Config()
		require.NoError(t, err)
		assert.Equal(t, Version, cfg.Version)
		assert.Equal(t, "main", cfg.DefaultBranch)
		assert.Equal(t, "+refs/heads/*:refs/remotes/origin/*", tw.Git(root, "config", "remote.origin.fetch"))
	})

	t.Run("refuses an existing directory", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(parent, "taken"), 0755))

		_, err := Clone(context.Background(), CloneOptions{URL: tw.Origin, Dest: "taken", Dir: parent})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory 'taken' already exists")
	})

	t.Run("failed clone leaves nothing behind", func(t *testing.T) {
		_, err := Clone(context.Background(), CloneOptions{URL: filepath.Join(parent, "missing.git"), Dir: parent})
		require.Error(t, err)
		assert.NoDirExists(t, filepath.Join(parent, "missing"))
	})
}

func TestInitialize(t *testing.T) {
	tw := testutil.NewTestWorkspace(t, "project")
	require.NoError(t, os.Remove(filepath.Join(tw.Root, ".git")))
	tw.Git(tw.Root, "--git-dir=.bare", "config", "--unset", "gwt.version")
	tw.Git(tw.Root, "--git-dir=.bare", "config", "--unset", "gwt.defaultBranch")

	ws := New(tw.Root, WithChdir(noChdir))
	require.ErrorIs(t, ws.CheckSetup(), ErrNotInitialized)

	result, err := Initialize(context.Background(), ws)
	require.NoError(t, err)
	assert.Empty(t, result.PreviousVersion)
	assert.True(t, result.CreatedGitFile)
	assert.Equal(t, "main", result.DefaultBranch)

	require.NoError(t, ws.CheckSetup())
	assert.Equal(t, "main", ws.DefaultBranch())

	again, err := Initialize(context.Background(), New(tw.Root, WithChdir(noChdir)))
	require.NoError(t, err)
	assert.True(t, again.AlreadyCurrent)
	assert.Equal(t, Version, again.PreviousVersion)
}

func TestInitialize_Upgrade(t *testing.T) {
	tw := testutil.NewTestWorkspace(t, "project")
	tw.Git(tw.Root, "config", "gwt.version", "0.9.0")

	ws := New(tw.Root, WithChdir(noChdir))
	result, err := Initialize(context.Background(), ws)
	require.NoError(t, err)

	assert.Equal(t, "0.9.0", result.PreviousVersion)
	assert.False(t, result.AlreadyCurrent)
	assert.Empty(t, result.DefaultBranch, "configured default branch is kept")
	assert.False(t, ws.NeedsUpgrade())
}
