package worktree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/process"
)

// ErrInterrupted is wrapped by errors returned after the user interrupted
// an operation.
var ErrInterrupted = errors.New("interrupted")

// interrupted reports whether err or ctx show that the user asked to stop.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || process.Interrupted(err)
}

// interruptedError wraps err so it matches ErrInterrupted.
func interruptedError(action string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", action, ErrInterrupted)
	}
	return fmt.Errorf("%s: %w: %w", action, ErrInterrupted, err)
}

// ValidationError is returned when a worktree name or destination is
// rejected before any git command runs.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid worktree name '%s': %s", e.Name, e.Reason)
}

// NotFoundError is returned when the requested worktree does not exist.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("worktree '%s' not found", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// SafetyViolation is returned when the safety gate blocks a removal.
type SafetyViolation struct {
	Name   string
	Issues []Issue
}

func (e *SafetyViolation) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	return fmt.Sprintf("cannot remove '%s': %s", e.Name, strings.Join(msgs, "; "))
}

// NetworkWarning records a fetch failure that was downgraded to a warning.
type NetworkWarning struct {
	Remote string
	Err    error
}

func (w *NetworkWarning) Error() string {
	target := w.Remote
	if target == "" {
		target = "remotes"
	}
	return fmt.Sprintf("failed to fetch %s: %s", target, git.Diagnostic(w.Err))
}

func (w *NetworkWarning) Unwrap() error {
	return w.Err
}
