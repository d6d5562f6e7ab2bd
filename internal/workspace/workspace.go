// Package workspace locates a gwt-managed repository and holds the state a
// single invocation shares: the root directory, the git client bound to it,
// and the [gwt] section of .bare/config.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gitconfig "github.com/go-git/go-git/v5/plumbing/format/config"

	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/logger"
)

// Version is written to gwt.version when a repository is initialized.
const Version = "1.0.0"

const (
	bareDir       = ".bare"
	gitFile       = ".git"
	gitdirPrefix  = "gitdir:"
	configSection = "gwt"
)

var (
	// ErrNotFound means no .bare directory was found walking up from the
	// start directory.
	ErrNotFound = errors.New("not in a gwt-managed repository, run 'gwt clone' or 'gwt init'")
	// ErrNotInitialized means .bare exists but gwt.version is unset.
	ErrNotInitialized = errors.New("found .bare but not gwt-managed, run 'gwt init' to set up")
)

// Config is the [gwt] section of .bare/config.
type Config struct {
	Version       string
	DefaultBranch string
}

// Workspace is the per-invocation context for a gwt repository.
type Workspace struct {
	Root string

	git   *git.Client
	chdir func(string) error

	enterOnce sync.Once
	enterErr  error

	mu     sync.Mutex
	config *Config
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithRunner routes git commands through r.
func WithRunner(r git.Runner) Option {
	return func(w *Workspace) {
		w.git = git.NewClientWithRunner(w.Root, r)
	}
}

// WithChdir replaces os.Chdir for Enter.
func WithChdir(fn func(string) error) Option {
	return func(w *Workspace) {
		w.chdir = fn
	}
}

// New creates a workspace rooted at root without checking the layout.
func New(root string, opts ...Option) *Workspace {
	w := &Workspace{
		Root:  root,
		git:   git.NewClient(root),
		chdir: os.Chdir,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Discover finds the workspace containing startDir (the current directory
// when empty).
func Discover(startDir string, opts ...Option) (*Workspace, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		startDir = wd
	}

	root, err := FindRoot(startDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("workspace root: %s", root)
	return New(root, opts...), nil
}

// FindRoot walks up from startDir looking for a directory that contains
// .bare, or a worktree whose .git pointer file sits next to a .bare sibling.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		if exists(filepath.Join(dir, bareDir)) {
			return dir, nil
		}

		if isGitdirPointer(filepath.Join(dir, gitFile)) {
			parent := filepath.Dir(dir)
			if exists(filepath.Join(parent, bareDir)) {
				return parent, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isGitdirPointer(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(content), gitdirPrefix)
}

// Git returns the git client bound to the workspace root.
func (w *Workspace) Git() *git.Client {
	return w.git
}

// BareDir returns the path of the bare object store.
func (w *Workspace) BareDir() string {
	return filepath.Join(w.Root, bareDir)
}

// WorktreePath returns where the worktree called name lives.
func (w *Workspace) WorktreePath(name string) string {
	return filepath.Join(w.Root, name)
}

// Config returns the [gwt] section of .bare/config. The result is cached
// until Invalidate is called. A missing config file yields an empty Config.
func (w *Workspace) Config() (*Config, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.config != nil {
		return w.config, nil
	}

	cfg, err := readConfig(filepath.Join(w.BareDir(), "config"))
	if err != nil {
		return nil, err
	}
	w.config = cfg
	return cfg, nil
}

func readConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	raw := gitconfig.New()
	if err := gitconfig.NewDecoder(f).Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if !raw.HasSection(configSection) {
		return &Config{}, nil
	}
	section := raw.Section(configSection)
	return &Config{
		Version:       section.Option("version"),
		DefaultBranch: section.Option("defaultBranch"),
	}, nil
}

// Invalidate drops the cached config so the next Config call re-reads it.
func (w *Workspace) Invalidate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config = nil
}

// DefaultBranch returns the configured default branch, or "" when unset or
// unreadable.
func (w *Workspace) DefaultBranch() string {
	cfg, err := w.Config()
	if err != nil {
		logger.Debug("reading workspace config: %v", err)
		return ""
	}
	return cfg.DefaultBranch
}

// CheckSetup verifies the repository was initialized by gwt.
func (w *Workspace) CheckSetup() error {
	cfg, err := w.Config()
	if err != nil {
		return err
	}
	if cfg.Version == "" {
		return ErrNotInitialized
	}
	return nil
}

// NeedsUpgrade reports whether the repository was initialized by a
// different gwt version.
func (w *Workspace) NeedsUpgrade() bool {
	cfg, err := w.Config()
	if err != nil || cfg.Version == "" {
		return false
	}
	return cfg.Version != Version
}

// SetConfig writes key into the [gwt] section and drops the cache.
func (w *Workspace) SetConfig(ctx context.Context, key, value string) error {
	defer w.Invalidate()
	if err := w.git.ConfigSet(ctx, configSection+"."+key, value); err != nil {
		return fmt.Errorf("failed to set %s.%s: %w", configSection, key, err)
	}
	return nil
}

// Enter switches the process working directory to the root. Only the first
// call has an effect; later calls return the first result.
func (w *Workspace) Enter() error {
	w.enterOnce.Do(func() {
		if err := w.chdir(w.Root); err != nil {
			w.enterErr = fmt.Errorf("failed to enter %s: %w", w.Root, err)
		}
	})
	return w.enterErr
}
