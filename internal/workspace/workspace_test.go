package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLayout(t *testing.T, config string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".bare"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: ./.bare\n"), 0644))
	if config != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, ".bare", "config"), []byte(config), 0644))
	}
	return root
}

func TestFindRoot(t *testing.T) {
	root := makeLayout(t, "")

	t.Run("from root", func(t *testing.T) {
		got, err := FindRoot(root)
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})

	t.Run("from nested directory inside a worktree", func(t *testing.T) {
		nested := filepath.Join(root, "feature", "src", "pkg")
		require.NoError(t, os.MkdirAll(nested, 0755))

		got, err := FindRoot(nested)
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})

	t.Run("from worktree with gitdir pointer", func(t *testing.T) {
		wt := filepath.Join(root, "main")
		require.NoError(t, os.MkdirAll(wt, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(wt, ".git"),
			[]byte("gitdir: "+filepath.Join(root, ".bare", "worktrees", "main")+"\n"), 0644))

		got, err := FindRoot(wt)
		require.NoError(t, err)
		assert.Equal(t, root, got)
	})

	t.Run("outside any workspace", func(t *testing.T) {
		_, err := FindRoot(t.TempDir())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestWorkspace_Config(t *testing.T) {
	t.Run("reads gwt section", func(t *testing.T) {
		root := makeLayout(t, `[core]
	bare = true
[remote "origin"]
	url = https://example.com/repo.git
[gwt]
	version = 1.0.0
	defaultBranch = develop
`)
		ws := New(root)

		cfg, err := ws.Config()
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", cfg.Version)
		assert.Equal(t, "develop", cfg.DefaultBranch)
		assert.Equal(t, "develop", ws.DefaultBranch())
		assert.NoError(t, ws.CheckSetup())
		assert.False(t, ws.NeedsUpgrade())
	})

	t.Run("no gwt section", func(t *testing.T) {
		ws := New(makeLayout(t, "[core]\n\tbare = true\n"))

		cfg, err := ws.Config()
		require.NoError(t, err)
		assert.Empty(t, cfg.Version)
		assert.Empty(t, ws.DefaultBranch())
		assert.ErrorIs(t, ws.CheckSetup(), ErrNotInitialized)
	})

	t.Run("missing config file", func(t *testing.T) {
		ws := New(makeLayout(t, ""))
		assert.ErrorIs(t, ws.CheckSetup(), ErrNotInitialized)
	})

	t.Run("older version needs upgrade", func(t *testing.T) {
		ws := New(makeLayout(t, "[gwt]\n\tversion = 0.9.0\n"))
		assert.True(t, ws.NeedsUpgrade())
	})
}

func TestWorkspace_Invalidate(t *testing.T) {
	root := makeLayout(t, "[gwt]\n\tversion = 1.0.0\n\tdefaultBranch = main\n")
	ws := New(root)
	assert.Equal(t, "main", ws.DefaultBranch())

	require.NoError(t, os.WriteFile(filepath.Join(root, ".bare", "config"),
		[]byte("[gwt]\n\tversion = 1.0.0\n\tdefaultBranch = trunk\n"), 0644))

	// Cached until invalidated.
	assert.Equal(t, "main", ws.DefaultBranch())

	ws.Invalidate()
	assert.Equal(t, "trunk", ws.DefaultBranch())
}

func TestWorkspace_EnterOnce(t *testing.T) {
	var calls []string
	ws := New("/some/root", WithChdir(func(dir string) error {
		calls = append(calls, dir)
		return nil
	}))

	require.NoError(t, ws.Enter())
	require.NoError(t, ws.Enter())
	require.NoError(t, ws.Enter())

	assert.Equal(t, []string{"/some/root"}, calls)
}

func TestWorkspace_EnterError(t *testing.T) {
	calls := 0
	ws := New("/nowhere", WithChdir(func(string) error {
		calls++
		return os.ErrNotExist
	}))

	assert.ErrorIs(t, ws.Enter(), os.ErrNotExist)
	assert.ErrorIs(t, ws.Enter(), os.ErrNotExist)
	assert.Equal(t, 1, calls)
}
