package autocopy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const defaultMaxWorkers = 4

// Copier seeds untracked files such as .env from one worktree into another.
type Copier struct {
	MaxWorkers int
}

// NewCopier creates a new Copier instance
func NewCopier() *Copier {
	return &Copier{MaxWorkers: defaultMaxWorkers}
}

// Result lists the relative paths that were copied and those that were
// skipped because the source was missing or the destination already existed.
type Result struct {
	Copied  []string
	Skipped []string
}

// ValidatePattern rejects patterns that could reach outside the worktree.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("copy pattern cannot be empty")
	}
	if filepath.IsAbs(pattern) || strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("copy pattern %q must be relative", pattern)
	}
	for _, segment := range strings.FieldsFunc(pattern, isSeparator) {
		if segment == ".." {
			return fmt.Errorf("copy pattern %q must not contain '..'", pattern)
		}
	}
	return nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// Copy copies every path matched by patterns from srcRoot to dstRoot.
// Plain entries name a file or directory; entries containing *, ? or [ are
// expanded with filepath.Glob. Existing destinations are never overwritten.
func (c *Copier) Copy(ctx context.Context, srcRoot, dstRoot string, patterns []string) (*Result, error) {
	result := &Result{}
	if len(patterns) == 0 {
		return result, nil
	}

	items, err := c.expand(srcRoot, patterns, result)
	if err != nil {
		return result, err
	}

	copied := make([]bool, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for i, rel := range items {
		i, rel := i, rel
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := c.copyItem(filepath.Join(srcRoot, rel), filepath.Join(dstRoot, rel))
			if err != nil {
				return fmt.Errorf("failed to copy %s: %w", rel, err)
			}
			copied[i] = ok
			return nil
		})
	}
	err = g.Wait()

	for i, rel := range items {
		if copied[i] {
			result.Copied = append(result.Copied, rel)
		} else if err == nil {
			result.Skipped = append(result.Skipped, rel)
		}
	}
	return result, err
}

func (c *Copier) workers() int {
	if c.MaxWorkers <= 0 {
		return defaultMaxWorkers
	}
	return c.MaxWorkers
}

// expand turns patterns into a sorted, de-duplicated list of relative paths
// that exist under srcRoot. Missing plain entries are recorded as skipped.
func (c *Copier) expand(srcRoot string, patterns []string, result *Result) ([]string, error) {
	seen := make(map[string]bool)
	var items []string

	add := func(rel string) {
		rel = filepath.Clean(rel)
		if !seen[rel] {
			seen[rel] = true
			items = append(items, rel)
		}
	}

	for _, pattern := range patterns {
		if err := ValidatePattern(pattern); err != nil {
			return nil, err
		}

		if !isGlob(pattern) {
			rel := filepath.FromSlash(strings.TrimSuffix(pattern, "/"))
			if _, err := os.Lstat(filepath.Join(srcRoot, rel)); err != nil {
				result.Skipped = append(result.Skipped, filepath.Clean(rel))
				continue
			}
			add(rel)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(srcRoot, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %s: %w", pattern, err)
		}
		for _, match := range matches {
			rel, err := filepath.Rel(srcRoot, match)
			if err != nil {
				continue
			}
			add(rel)
		}
	}

	sort.Strings(items)
	return pruneNested(items), nil
}

// pruneNested drops entries that live inside another entry's directory so a
// directory and one of its files are not copied twice.
func pruneNested(sorted []string) []string {
	var out []string
	for _, rel := range sorted {
		if len(out) > 0 {
			parent := out[len(out)-1]
			if strings.HasPrefix(rel, parent+string(filepath.Separator)) {
				continue
			}
		}
		out = append(out, rel)
	}
	return out
}

// copyItem copies a file or a directory tree. It reports false when the
// destination already exists.
func (c *Copier) copyItem(srcPath, dstPath string) (bool, error) {
	if _, err := os.Lstat(dstPath); err == nil {
		return false, nil
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return true, c.copyDirectory(srcPath, dstPath)
	}
	return true, c.copyFile(srcPath, dstPath, info.Mode())
}

func (c *Copier) copyFile(srcPath, dstPath string, mode os.FileMode) error {
	dstDir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcPath, err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstPath, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	return os.Chmod(dstPath, mode.Perm())
}

func (c *Copier) copyDirectory(srcPath, dstPath string) error {
	if err := os.MkdirAll(dstPath, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", dstPath, err)
	}

	entries, err := os.ReadDir(srcPath)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", srcPath, err)
	}

	for _, entry := range entries {
		src := filepath.Join(srcPath, entry.Name())
		dst := filepath.Join(dstPath, entry.Name())

		if entry.IsDir() {
			if err := c.copyDirectory(src, dst); err != nil {
				return err
			}
			continue
		}

		info, err := os.Stat(src)
		if err != nil {
			// Dangling symlinks are skipped.
			continue
		}
		if info.IsDir() {
			err = c.copyDirectory(src, dst)
		} else {
			err = c.copyFile(src, dst, info.Mode())
		}
		if err != nil {
			return err
		}
	}
	return nil
}
