package worktree

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keisukeshimizu/gwt/internal/git"
)

// fakeRepo is an in-memory Repository. Every call is recorded.
type fakeRepo struct {
	mu    sync.Mutex
	calls []string

	worktrees   []git.Worktree
	listErr     error
	local       map[string]bool
	localErr    error
	remoteRefs  []string
	refsErr     error
	remotes     map[string]bool
	fetchAllErr error
	fetchErr    error
	status      map[string]string
	statusErr   map[string]error
	counts      map[string]int
	countErr    map[string]error
	addErr      error
	added       []git.AddWorktreeArgs
	removeErr   error
	forceErr    error
	removed     []string
	deleteErr   error
	deleted     []string
	locked      map[string]string
	moved       map[string]string

	// Hooks run before the call returns, outside the lock.
	onLocal  func()
	onRefs   func()
	onCount  func(revRange string)
	onRemove func(force bool)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		local:     map[string]bool{},
		remotes:   map[string]bool{"origin": true},
		status:    map[string]string{},
		statusErr: map[string]error{},
		counts:    map[string]int{},
		countErr:  map[string]error{},
		locked:    map[string]string{},
		moved:     map[string]string{},
	}
}

func cmdErr(stderr string) error {
	return &git.ExternalCommandError{Args: []string{"fake"}, ExitCode: 1, Stderr: stderr, Err: errors.New("exit status 1")}
}

func (f *fakeRepo) record(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeRepo) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRepo) ListWorktrees(ctx context.Context) ([]git.Worktree, error) {
	f.record("worktree list")
	return f.worktrees, f.listErr
}

func (f *fakeRepo) LocalBranchExists(ctx context.Context, name string) (bool, error) {
	f.record("show-ref %s", name)
	if f.onLocal != nil {
		f.onLocal()
	}
	return f.local[name], f.localErr
}

func (f *fakeRepo) RemoteRefs(ctx context.Context) ([]string, error) {
	f.record("for-each-ref")
	if f.onRefs != nil {
		f.onRefs()
	}
	return f.remoteRefs, f.refsErr
}

func (f *fakeRepo) RemoteConfigured(ctx context.Context, remote string) (bool, error) {
	f.record("remote get-url %s", remote)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remotes[remote], nil
}

func (f *fakeRepo) FetchAll(ctx context.Context) error {
	f.record("fetch --all")
	return f.fetchAllErr
}

func (f *fakeRepo) Fetch(ctx context.Context, remote, branch string) error {
	f.record("fetch %s %s", remote, branch)
	return f.fetchErr
}

func (f *fakeRepo) Status(ctx context.Context, path string) (string, error) {
	f.record("status %s", filepath.Base(path))
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[path], f.statusErr[path]
}

func (f *fakeRepo) CountCommits(ctx context.Context, path, revRange string) (int, error) {
	f.record("rev-list %s", revRange)
	if f.onCount != nil {
		f.onCount(revRange)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[revRange], f.countErr[revRange]
}

func (f *fakeRepo) AddWorktree(ctx context.Context, args git.AddWorktreeArgs) error {
	f.record("%s", strings.Join(args.Args(), " "))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, args)
	return f.addErr
}

func (f *fakeRepo) RemoveWorktree(ctx context.Context, path string, force bool) error {
	if f.onRemove != nil {
		f.onRemove(force)
	}
	if force {
		f.record("worktree remove --force %s", path)
		if f.forceErr == nil {
			f.removed = append(f.removed, path)
		}
		return f.forceErr
	}
	f.record("worktree remove %s", path)
	if f.removeErr == nil {
		f.removed = append(f.removed, path)
	}
	return f.removeErr
}

func (f *fakeRepo) DeleteBranch(ctx context.Context, name string) error {
	f.record("branch -d %s", name)
	if f.deleteErr == nil {
		f.deleted = append(f.deleted, name)
	}
	return f.deleteErr
}

func (f *fakeRepo) LockWorktree(ctx context.Context, path, reason string) error {
	f.record("worktree lock %s", path)
	f.locked[path] = reason
	return nil
}

func (f *fakeRepo) UnlockWorktree(ctx context.Context, path string) error {
	f.record("worktree unlock %s", path)
	delete(f.locked, path)
	return nil
}

func (f *fakeRepo) MoveWorktree(ctx context.Context, path, dest string) error {
	f.record("worktree move %s", path)
	f.moved[path] = dest
	return nil
}

// register makes names known to ListWorktrees as worktrees below ws.
func (f *fakeRepo) register(ws *fakeWorkspace, names ...string) {
	for _, name := range names {
		f.worktrees = append(f.worktrees, git.Worktree{
			Path:   ws.WorktreePath(name),
			Name:   filepath.Base(name),
			Branch: git.Attached{Name: name},
		})
	}
}

// rendezvous holds every arriving call until n calls have arrived. Calls
// made one after another never meet and are released by the timeout.
type rendezvous struct {
	wg     sync.WaitGroup
	all    chan struct{}
	missed atomic.Bool
}

func newRendezvous(n int) *rendezvous {
	r := &rendezvous{all: make(chan struct{})}
	r.wg.Add(n)
	go func() {
		r.wg.Wait()
		close(r.all)
	}()
	return r
}

func (r *rendezvous) arrive() {
	r.wg.Done()
	select {
	case <-r.all:
	case <-time.After(2 * time.Second):
		r.missed.Store(true)
	}
}

// fakeWorkspace is a Workspace rooted at a temporary directory.
type fakeWorkspace struct {
	root          string
	defaultBranch string
	setupErr      error
	entered       int
}

func newFakeWorkspace(t *testing.T, dirs ...string) *fakeWorkspace {
	t.Helper()
	ws := &fakeWorkspace{root: t.TempDir(), defaultBranch: "main"}
	for _, dir := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(ws.root, dir), 0755))
	}
	return ws
}

func (w *fakeWorkspace) CheckSetup() error               { return w.setupErr }
func (w *fakeWorkspace) DefaultBranch() string           { return w.defaultBranch }
func (w *fakeWorkspace) WorktreePath(name string) string { return filepath.Join(w.root, name) }

func (w *fakeWorkspace) Enter() error {
	w.entered++
	return nil
}
