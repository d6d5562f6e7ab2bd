package git

import (
	"path/filepath"
	"strings"
)

// Branch is what a worktree has checked out: either Attached to a named
// branch or Detached. Callers are expected to switch over both variants.
type Branch interface {
	isBranch()
	String() string
}

// Attached is a worktree whose HEAD is a symbolic ref to a local branch.
type Attached struct {
	Name string
}

// Detached is a worktree whose HEAD points directly at a commit.
type Detached struct{}

func (Attached) isBranch() {}
func (Detached) isBranch() {}

func (b Attached) String() string { return b.Name }
func (Detached) String() string   { return "(detached)" }

// BranchName returns the branch name for Attached and false for Detached.
func BranchName(b Branch) (string, bool) {
	switch v := b.(type) {
	case Attached:
		return v.Name, true
	case Detached:
		return "", false
	default:
		return "", false
	}
}

// Worktree is one stanza of `git worktree list --porcelain`.
type Worktree struct {
	Path   string
	Name   string
	Commit string
	Branch Branch
	IsBare bool

	// LockReason and PrunableReason are nil when the flag is absent, point
	// to "" when the flag is present without a reason, and hold the reason
	// text otherwise.
	LockReason     *string
	PrunableReason *string
}

// Locked reports whether the worktree is locked.
func (w Worktree) Locked() bool {
	return w.LockReason != nil
}

// Prunable reports whether git considers the worktree prunable.
func (w Worktree) Prunable() bool {
	return w.PrunableReason != nil
}

// ShortCommit returns the first seven characters of the commit id.
func (w Worktree) ShortCommit() string {
	if len(w.Commit) > 7 {
		return w.Commit[:7]
	}
	return w.Commit
}

const headsPrefix = "refs/heads/"

// ParseWorktreeList parses the output of 'git worktree list --porcelain'.
// Stanzas without a worktree line are dropped; unknown lines are ignored.
func ParseWorktreeList(output string) []Worktree {
	worktrees := []Worktree{}

	var current Worktree
	started := false

	flush := func() {
		if started && current.Path != "" {
			current.Name = filepath.Base(current.Path)
			worktrees = append(worktrees, current)
		}
		current = Worktree{}
		started = false
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if !started {
			current = Worktree{Branch: Detached{}}
			started = true
		}

		keyword, value, hasValue := strings.Cut(line, " ")
		switch keyword {
		case "worktree":
			if hasValue {
				current.Path = value
			}
		case "HEAD":
			if hasValue {
				current.Commit = value
			}
		case "branch":
			if hasValue {
				current.Branch = Attached{Name: strings.TrimPrefix(value, headsPrefix)}
			}
		case "bare":
			if !hasValue {
				current.IsBare = true
			}
		case "detached":
			if !hasValue {
				current.Branch = Detached{}
			}
		case "locked":
			reason := value
			current.LockReason = &reason
		case "prunable":
			reason := value
			current.PrunableReason = &reason
		}
	}
	flush()

	return worktrees
}

// FormatWorktreeList renders worktrees in the porcelain stanza format
// understood by ParseWorktreeList.
func FormatWorktreeList(worktrees []Worktree) string {
	var b strings.Builder
	for i, wt := range worktrees {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("worktree " + wt.Path + "\n")
		if wt.Commit != "" {
			b.WriteString("HEAD " + wt.Commit + "\n")
		}
		if wt.IsBare {
			b.WriteString("bare\n")
		} else if name, ok := BranchName(wt.Branch); ok {
			b.WriteString("branch " + headsPrefix + name + "\n")
		} else {
			b.WriteString("detached\n")
		}
		writeFlag(&b, "locked", wt.LockReason)
		writeFlag(&b, "prunable", wt.PrunableReason)
	}
	return b.String()
}

func writeFlag(b *strings.Builder, keyword string, reason *string) {
	if reason == nil {
		return
	}
	if *reason == "" {
		b.WriteString(keyword + "\n")
		return
	}
	b.WriteString(keyword + " " + *reason + "\n")
}
