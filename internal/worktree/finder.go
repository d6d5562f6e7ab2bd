package worktree

import (
	"github.com/sahilm/fuzzy"
)

// maxSuggestions caps the names offered when a lookup misses.
const maxSuggestions = 3

// Find returns the entry whose name is exactly name. On a miss the
// NotFoundError carries the closest names by fuzzy match.
func Find(entries []Entry, name string) (Entry, error) {
	names := make([]string, len(entries))
	for i, e := range entries {
		if e.Name == name {
			return e, nil
		}
		names[i] = e.Name
	}
	return Entry{}, &NotFoundError{Name: name, Suggestions: Suggest(name, names)}
}

// Suggest returns up to three candidates that fuzzy-match name, best first.
func Suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)
	var out []string
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
