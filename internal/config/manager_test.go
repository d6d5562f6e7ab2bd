package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrom(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return NewManager(v).Load()
}

func TestManager_Load(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := NewManager(viper.New()).Load()
		require.NoError(t, err)

		assert.Empty(t, cfg.IDE)
		assert.True(t, cfg.Fetch)
		assert.Equal(t, "table", cfg.Format)
		assert.Empty(t, cfg.Copy)
	})

	t.Run("from file", func(t *testing.T) {
		cfg, err := loadFrom(t, "ide: zed\nfetch: false\nformat: json\ncopy:\n  - .env\n  - config/local.yaml\n")
		require.NoError(t, err)

		assert.Equal(t, "zed", cfg.IDE)
		assert.False(t, cfg.Fetch)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, []string{".env", "config/local.yaml"}, cfg.Copy)
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("GWT_IDE", "nvim")
		t.Setenv("GWT_FETCH", "false")

		v := viper.New()
		v.SetEnvPrefix("GWT")
		v.AutomaticEnv()

		cfg, err := NewManager(v).Load()
		require.NoError(t, err)
		assert.Equal(t, "nvim", cfg.IDE)
		assert.False(t, cfg.Fetch)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := loadFrom(t, "format: xml\ncopy:\n  - ../secrets\n  - /etc/passwd\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format: xml")
		assert.Contains(t, err.Error(), "invalid path: ../secrets")
		assert.Contains(t, err.Error(), "must be relative")
	})
}

func TestManager_Decode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: xml\nide: zed\n"), 0644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	m := NewManager(v)

	cfg, err := m.Decode()
	require.NoError(t, err)
	assert.Equal(t, "xml", cfg.Format)
	assert.Equal(t, "zed", cfg.IDE)
	assert.Equal(t, []string{"unsupported output format: xml"}, m.ValidateConfig(cfg))
}

func TestManager_SaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	m := NewManager(viper.New())

	require.NoError(t, m.SaveConfig(&Config{IDE: "code", Fetch: true, Format: "names", Copy: []string{".env"}}, path))

	cfg, err := loadFrom(t, mustRead(t, path))
	require.NoError(t, err)
	assert.Equal(t, "code", cfg.IDE)
	assert.Equal(t, "names", cfg.Format)
	assert.Equal(t, []string{".env"}, cfg.Copy)
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
