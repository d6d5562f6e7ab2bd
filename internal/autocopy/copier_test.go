package autocopy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestValidatePattern(t *testing.T) {
	tests := []struct {
		pattern string
		wantErr bool
	}{
		{".env", false},
		{"config/local.yaml", false},
		{"*.local", false},
		{".vscode/", false},
		{"", true},
		{"   ", true},
		{"/etc/passwd", true},
		{"../secrets", true},
		{"config/../../x", true},
		{"..\\windows", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			err := ValidatePattern(tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCopier_Copy(t *testing.T) {
	t.Run("copies files and directories", func(t *testing.T) {
		src, dst := t.TempDir(), t.TempDir()
		writeFile(t, src, ".env", "SECRET=1")
		writeFile(t, src, ".vscode/settings.json", "{}")
		writeFile(t, src, ".vscode/nested/launch.json", "[]")

		result, err := NewCopier().Copy(context.Background(), src, dst, []string{".env", ".vscode/"})
		require.NoError(t, err)

		assert.Equal(t, []string{".env", ".vscode"}, result.Copied)
		assert.Empty(t, result.Skipped)
		assert.Equal(t, "SECRET=1", readFile(t, dst, ".env"))
		assert.Equal(t, "[]", readFile(t, dst, ".vscode/nested/launch.json"))
	})

	t.Run("expands globs", func(t *testing.T) {
		src, dst := t.TempDir(), t.TempDir()
		writeFile(t, src, "a.local", "a")
		writeFile(t, src, "b.local", "b")
		writeFile(t, src, "c.txt", "c")

		result, err := NewCopier().Copy(context.Background(), src, dst, []string{"*.local"})
		require.NoError(t, err)

		assert.Equal(t, []string{"a.local", "b.local"}, result.Copied)
		assert.NoFileExists(t, filepath.Join(dst, "c.txt"))
	})

	t.Run("missing sources are skipped", func(t *testing.T) {
		src, dst := t.TempDir(), t.TempDir()

		result, err := NewCopier().Copy(context.Background(), src, dst, []string{".env", "*.none"})
		require.NoError(t, err)

		assert.Empty(t, result.Copied)
		assert.Equal(t, []string{".env"}, result.Skipped)
	})

	t.Run("existing destination is not overwritten", func(t *testing.T) {
		src, dst := t.TempDir(), t.TempDir()
		writeFile(t, src, ".env", "new")
		writeFile(t, dst, ".env", "old")

		result, err := NewCopier().Copy(context.Background(), src, dst, []string{".env"})
		require.NoError(t, err)

		assert.Empty(t, result.Copied)
		assert.Equal(t, []string{".env"}, result.Skipped)
		assert.Equal(t, "old", readFile(t, dst, ".env"))
	})

	t.Run("nested matches are copied once", func(t *testing.T) {
		src, dst := t.TempDir(), t.TempDir()
		writeFile(t, src, "config/local.yaml", "x")

		result, err := NewCopier().Copy(context.Background(), src, dst, []string{"config", "config/local.yaml"})
		require.NoError(t, err)

		assert.Equal(t, []string{"config"}, result.Copied)
		assert.Equal(t, "x", readFile(t, dst, "config/local.yaml"))
	})

	t.Run("preserves file mode", func(t *testing.T) {
		src, dst := t.TempDir(), t.TempDir()
		writeFile(t, src, "run.sh", "#!/bin/sh")
		require.NoError(t, os.Chmod(filepath.Join(src, "run.sh"), 0755))

		_, err := NewCopier().Copy(context.Background(), src, dst, []string{"run.sh"})
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(dst, "run.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	})

	t.Run("rejects traversal", func(t *testing.T) {
		src, dst := t.TempDir(), t.TempDir()

		_, err := NewCopier().Copy(context.Background(), src, dst, []string{"../outside"})
		assert.Error(t, err)
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		result, err := NewCopier().Copy(context.Background(), t.TempDir(), t.TempDir(), nil)
		require.NoError(t, err)
		assert.Empty(t, result.Copied)
	})
}
