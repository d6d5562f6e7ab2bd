package worktree

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/process"
)

func TestProvisioner_Routes(t *testing.T) {
	ctx := context.Background()

	t.Run("local branch wins regardless of remotes", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		repo := newFakeRepo()
		repo.local["feat"] = true
		repo.remoteRefs = []string{"origin/feat", "fork/feat"}
		repo.remotes["fork"] = true

		res, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat", NoFetch: true})
		require.NoError(t, err)

		assert.Equal(t, FromLocal, res.Route)
		assert.Equal(t, ws.WorktreePath("feat"), res.Path)
		require.Len(t, repo.added, 1)
		assert.Equal(t, []string{"worktree", "add", "feat", "feat"}, repo.added[0].Args())
	})

	t.Run("single remote ref is tracked", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		repo := newFakeRepo()
		repo.remoteRefs = []string{"upstream/feat"}
		repo.remotes = map[string]bool{"upstream": true}

		res, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat", NoFetch: true})
		require.NoError(t, err)

		assert.Equal(t, FromRemote, res.Route)
		assert.Equal(t, "upstream/feat", res.Source)
		assert.Equal(t, []string{"worktree", "add", "--track", "-b", "feat", "feat", "upstream/feat"}, repo.added[0].Args())
	})

	t.Run("origin preferred", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		repo := newFakeRepo()
		repo.remoteRefs = []string{"fork/feat", "origin/feat"}
		repo.remotes["fork"] = true

		res, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat", NoFetch: true})
		require.NoError(t, err)
		assert.Equal(t, "origin/feat", res.Source)
	})

	t.Run("new branch from freshest remote default", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		repo := newFakeRepo()
		repo.remoteRefs = []string{"origin/main"}

		res, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat", NoFetch: true})
		require.NoError(t, err)

		assert.Equal(t, FromNewBranch, res.Route)
		assert.Equal(t, "origin/main", res.Source)
		assert.Equal(t, []string{"worktree", "add", "--no-track", "-b", "feat", "feat", "origin/main"}, repo.added[0].Args())
	})

	t.Run("new branch from explicit local source", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		repo := newFakeRepo()

		res, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat", From: "develop", NoFetch: true})
		require.NoError(t, err)
		assert.Equal(t, "develop", res.Source)
		assert.Equal(t, "develop", repo.added[0].Commitish)
	})

	t.Run("fallback source when no default branch configured", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		ws.defaultBranch = ""
		repo := newFakeRepo()

		res, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat", NoFetch: true})
		require.NoError(t, err)
		assert.Equal(t, "master", res.Source)
	})
}

func TestProvisioner_RejectsBeforeAnyCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("path traversal", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		repo := newFakeRepo()

		_, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "../x"})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Empty(t, repo.Calls())
		assert.Zero(t, ws.entered)
	})

	t.Run("existing directory", func(t *testing.T) {
		ws := newFakeWorkspace(t, "feat")
		repo := newFakeRepo()

		_, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat"})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, err.Error(), "already exists")
		assert.Empty(t, repo.Calls())
	})

	t.Run("workspace not initialized", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		ws.setupErr = errors.New("not gwt-managed")
		repo := newFakeRepo()

		_, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat"})
		assert.EqualError(t, err, "not gwt-managed")
		assert.Empty(t, repo.Calls())
	})
}

func TestProvisioner_FetchFailureIsWarning(t *testing.T) {
	ws := newFakeWorkspace(t)
	repo := newFakeRepo()
	repo.fetchAllErr = cmdErr("fatal: unable to access remote")

	res, err := NewProvisioner(ws, repo).Create(context.Background(), CreateOptions{Name: "feat"})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Error(), "unable to access remote")
	assert.Equal(t, "fetch --all", repo.Calls()[0])
	assert.Len(t, repo.added, 1)
	assert.Equal(t, 1, ws.entered)
}

func TestProvisioner_InterruptedFetchStops(t *testing.T) {
	t.Run("relayed signal", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		repo := newFakeRepo()
		repo.fetchAllErr = &git.ExternalCommandError{
			Args: []string{"fetch", "--all"},
			Err:  &process.InterruptedError{Signal: os.Interrupt, Err: errors.New("signal: interrupt")},
		}

		res, err := NewProvisioner(ws, repo).Create(context.Background(), CreateOptions{Name: "feat"})
		require.ErrorIs(t, err, ErrInterrupted)
		assert.Nil(t, res)
		assert.Equal(t, []string{"fetch --all"}, repo.Calls())
		assert.Empty(t, repo.added)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		repo := newFakeRepo()
		repo.fetchAllErr = cmdErr("error: could not fetch origin")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat"})
		require.ErrorIs(t, err, ErrInterrupted)
		assert.Empty(t, repo.added)
	})

	t.Run("cancelled while resolving", func(t *testing.T) {
		ws := newFakeWorkspace(t)
		repo := newFakeRepo()
		ctx, cancel := context.WithCancel(context.Background())
		repo.onRefs = cancel

		_, err := NewProvisioner(ws, repo).Create(ctx, CreateOptions{Name: "feat", NoFetch: true})
		require.ErrorIs(t, err, ErrInterrupted)
		assert.Empty(t, repo.added)
	})
}

func TestProvisioner_FailureCarriesDiagnostic(t *testing.T) {
	ws := newFakeWorkspace(t)
	repo := newFakeRepo()
	repo.addErr = cmdErr("fatal: invalid reference: main\n")

	_, err := NewProvisioner(ws, repo).Create(context.Background(), CreateOptions{Name: "feat", NoFetch: true})
	require.Error(t, err)

	var cmdError *git.ExternalCommandError
	require.True(t, errors.As(err, &cmdError))
	assert.Equal(t, "fatal: invalid reference: main", git.Diagnostic(err))
}
