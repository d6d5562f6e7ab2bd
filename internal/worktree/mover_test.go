package worktree

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("inside root", func(t *testing.T) {
		ws := newFakeWorkspace(t, "feat")
		repo := newFakeRepo()

		dest, err := NewManager(ws, repo, ws.root).Move(ctx, "feat", "archive/feat")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(ws.root, "archive", "feat"), dest)
		assert.Equal(t, dest, repo.moved["feat"])
		assert.Equal(t, 1, ws.entered)
	})

	rejected := map[string]string{
		"parent":       "../elsewhere",
		"root itself":  ".",
		"sneaky":       "a/../../b",
		"absolute":     "/tmp/outside",
		"bare":         ".bare/x",
		"existing dir": "feat",
	}
	for desc, dest := range rejected {
		t.Run("rejects "+desc, func(t *testing.T) {
			ws := newFakeWorkspace(t, "feat")
			repo := newFakeRepo()

			_, err := NewManager(ws, repo, ws.root).Move(ctx, "feat", dest)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "dest %q", dest)
			assert.Empty(t, repo.moved)
		})
	}
}

func TestManager_LockUnlock(t *testing.T) {
	ctx := context.Background()
	ws := newFakeWorkspace(t, "feat")
	repo := newFakeRepo()
	m := NewManager(ws, repo, ws.root)

	require.NoError(t, m.Lock(ctx, "feat", "on usb"))
	assert.Equal(t, "on usb", repo.locked["feat"])

	require.NoError(t, m.Unlock(ctx, "feat"))
	assert.NotContains(t, repo.locked, "feat")

	var verr *ValidationError
	require.True(t, errors.As(m.Lock(ctx, "-x", ""), &verr))
}
