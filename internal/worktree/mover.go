package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manager runs the lock, unlock and move operations on existing worktrees.
type Manager struct {
	ws   Workspace
	repo Repository
	root string
}

// NewManager creates a manager for worktrees below root.
func NewManager(ws Workspace, repo Repository, root string) *Manager {
	return &Manager{ws: ws, repo: repo, root: root}
}

func (m *Manager) prepare(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := m.ws.CheckSetup(); err != nil {
		return err
	}
	return m.ws.Enter()
}

// Lock locks the worktree so `git worktree prune` leaves it alone.
func (m *Manager) Lock(ctx context.Context, name, reason string) error {
	if err := m.prepare(name); err != nil {
		return err
	}
	if err := m.repo.LockWorktree(ctx, name, reason); err != nil {
		return fmt.Errorf("failed to lock worktree: %w", err)
	}
	return nil
}

// Unlock removes a worktree lock.
func (m *Manager) Unlock(ctx context.Context, name string) error {
	if err := m.prepare(name); err != nil {
		return err
	}
	if err := m.repo.UnlockWorktree(ctx, name); err != nil {
		return fmt.Errorf("failed to unlock worktree: %w", err)
	}
	return nil
}

// Move relocates a worktree. dest is relative to the workspace root and
// must resolve to a location strictly inside it. Returns the absolute
// destination.
func (m *Manager) Move(ctx context.Context, name, dest string) (string, error) {
	if err := m.prepare(name); err != nil {
		return "", err
	}

	target, err := m.insideRoot(dest)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(target); err == nil {
		return "", &ValidationError{Name: dest, Reason: "destination already exists"}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}

	if err := m.repo.MoveWorktree(ctx, name, target); err != nil {
		return "", fmt.Errorf("failed to move worktree: %w", err)
	}
	return target, nil
}

func (m *Manager) insideRoot(dest string) (string, error) {
	target := dest
	if !filepath.IsAbs(target) {
		target = filepath.Join(m.root, dest)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(m.root, target)
	if err != nil || rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &ValidationError{Name: dest, Reason: "destination must be inside the repository root"}
	}
	if reservedNames[strings.Split(filepath.ToSlash(rel), "/")[0]] {
		return "", &ValidationError{Name: dest, Reason: "name is reserved"}
	}
	return target, nil
}
