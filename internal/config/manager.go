package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the user configuration of gwt
type Config struct {
	IDE    string   `mapstructure:"ide" yaml:"ide"`       // Editor command for `gwt edit`
	Fetch  bool     `mapstructure:"fetch" yaml:"fetch"`   // Fetch remotes before add and sync
	Format string   `mapstructure:"format" yaml:"format"` // Default `gwt list` output format
	Copy   []string `mapstructure:"copy" yaml:"copy"`     // Files seeded into new worktrees
}

var validFormats = []string{"table", "names", "json", "yaml"}

// Manager handles configuration loading, saving, and validation
type Manager struct {
	v *viper.Viper
}

// NewManager creates a configuration manager backed by v and registers the
// defaults on it.
func NewManager(v *viper.Viper) *Manager {
	v.SetDefault("ide", "")
	v.SetDefault("fetch", true)
	v.SetDefault("format", "table")
	v.SetDefault("copy", []string{})
	return &Manager{v: v}
}

// DefaultPath returns $HOME/.config/gwt/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gwt", "config.yaml"), nil
}

// Load decodes the merged viper state (defaults, config file, GWT_*
// environment) and validates it.
func (m *Manager) Load() (*Config, error) {
	cfg, err := m.Decode()
	if err != nil {
		return nil, err
	}

	if errs := m.ValidateConfig(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Decode decodes the merged viper state without validating it.
func (m *Manager) Decode() (*Config, error) {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// ValidateConfig validates the configuration and returns any errors
func (m *Manager) ValidateConfig(cfg *Config) []string {
	var errs []string

	if cfg.Format != "" && !contains(validFormats, cfg.Format) {
		errs = append(errs, fmt.Sprintf("unsupported output format: %s", cfg.Format))
	}

	for i, item := range cfg.Copy {
		switch {
		case strings.TrimSpace(item) == "":
			errs = append(errs, fmt.Sprintf("copy item %d has empty path", i))
		case filepath.IsAbs(item):
			errs = append(errs, fmt.Sprintf("copy item %d must be relative: %s", i, item))
		case strings.Contains(item, ".."):
			errs = append(errs, fmt.Sprintf("copy item %d contains invalid path: %s", i, item))
		}
	}

	return errs
}

// SaveConfig writes cfg as YAML to path, creating parent directories.
func (m *Manager) SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ConfigFileUsed returns the config file viper read, if any.
func (m *Manager) ConfigFileUsed() string {
	return m.v.ConfigFileUsed()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
