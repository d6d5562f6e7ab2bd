package worktree

import (
	"strings"
)

// reservedNames are directories of the workspace root that can never be
// worktrees.
var reservedNames = map[string]bool{
	".bare": true,
	".git":  true,
}

// ValidateName applies the worktree naming policy. Names double as the
// directory below the workspace root and as the branch name, so the rules
// combine path safety with git's ref-format restrictions.
func ValidateName(name string) error {
	reason := nameViolation(name)
	if reason == "" {
		return nil
	}
	return &ValidationError{Name: name, Reason: reason}
}

func nameViolation(name string) string {
	switch {
	case strings.TrimSpace(name) == "":
		return "name is empty"
	case reservedNames[name]:
		return "name is reserved"
	case strings.Contains(name, ".."):
		return "name must not contain '..'"
	case strings.HasPrefix(name, "/"):
		return "name must not be an absolute path"
	case strings.HasPrefix(name, "-"):
		return "name must not start with '-'"
	case strings.HasSuffix(name, "/"):
		return "name must not end with '/'"
	case strings.HasSuffix(name, ".lock"):
		return "name must not end with '.lock'"
	case strings.Contains(name, "//"):
		return "name must not contain '//'"
	case strings.Contains(name, "@{"):
		return "name must not contain '@{'"
	case name == "@":
		return "name must not be '@'"
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return "name must not contain control characters"
		}
		if strings.ContainsRune(` ~^:?*\[]`, r) {
			return "name must not contain '" + string(r) + "'"
		}
	}

	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") {
			return "path components must not start or end with '.'"
		}
	}

	return ""
}
