package worktree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/keisukeshimizu/gwt/internal/git"
)

// Format is a `gwt list` output format.
type Format string

const (
	FormatTable Format = "table"
	FormatNames Format = "names"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatNames, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: table, names, json, yaml)", s)
	}
}

// Render writes entries in the given format.
func Render(w io.Writer, format Format, entries []Entry, now time.Time) error {
	switch format {
	case FormatNames:
		return RenderNames(w, entries)
	case FormatJSON:
		return RenderJSON(w, entries)
	case FormatYAML:
		return RenderYAML(w, entries)
	default:
		return RenderTable(w, entries, now)
	}
}

// RenderTable writes one aligned row per entry:
// name, short commit, branch, bracketed flags and age.
func RenderTable(w io.Writer, entries []Entry, now time.Time) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		flags := ""
		if f := entryFlags(e); len(f) > 0 {
			flags = "[" + strings.Join(f, ", ") + "]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.ShortCommit(), branchLabel(e.Branch), flags, FormatAge(e.ModTime, now))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, line := range strings.SplitAfter(buf.String(), "\n") {
		if line == "" {
			continue
		}
		if _, err := io.WriteString(w, strings.TrimRight(line, " \n")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func branchLabel(b git.Branch) string {
	if b == nil {
		return git.Detached{}.String()
	}
	return b.String()
}

func entryFlags(e Entry) []string {
	var flags []string
	if st := e.Status; st != nil {
		switch {
		case st.Err != nil:
			flags = append(flags, "unknown")
		default:
			if st.Dirty {
				flags = append(flags, "dirty")
			}
			switch st.Sync {
			case SyncAhead:
				flags = append(flags, fmt.Sprintf("ahead %d", st.Ahead))
			case SyncBehind:
				flags = append(flags, fmt.Sprintf("behind %d", st.Behind))
			case SyncDiverged:
				flags = append(flags, fmt.Sprintf("ahead %d, behind %d", st.Ahead, st.Behind))
			case SyncNoRemote:
				flags = append(flags, "no remote")
			}
		}
	}
	if e.Locked() {
		flags = append(flags, "locked")
	}
	if e.Prunable() {
		flags = append(flags, "prunable")
	}
	return flags
}

// FormatAge renders how long ago t was, or "" for the zero time.
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	case d >= time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d >= time.Minute:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	default:
		return "just now"
	}
}

// RenderNames writes one worktree name per line.
func RenderNames(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.Name); err != nil {
			return err
		}
	}
	return nil
}

// entryView is the serialized form of an Entry.
type entryView struct {
	Name           string     `json:"name" yaml:"name"`
	Path           string     `json:"path" yaml:"path"`
	Branch         *string    `json:"branch" yaml:"branch"`
	Commit         string     `json:"commit,omitempty" yaml:"commit,omitempty"`
	Locked         bool       `json:"locked" yaml:"locked"`
	LockReason     string     `json:"lockReason,omitempty" yaml:"lockReason,omitempty"`
	Prunable       bool       `json:"prunable" yaml:"prunable"`
	PrunableReason string     `json:"prunableReason,omitempty" yaml:"prunableReason,omitempty"`
	ModTime        *time.Time `json:"modTime,omitempty" yaml:"modTime,omitempty"`
	Dirty          *bool      `json:"dirty,omitempty" yaml:"dirty,omitempty"`
	Sync           SyncStatus `json:"sync,omitempty" yaml:"sync,omitempty"`
	Ahead          int        `json:"ahead,omitempty" yaml:"ahead,omitempty"`
	Behind         int        `json:"behind,omitempty" yaml:"behind,omitempty"`
}

func viewOf(e Entry) entryView {
	v := entryView{
		Name:     e.Name,
		Path:     e.Path,
		Commit:   e.Commit,
		Locked:   e.Locked(),
		Prunable: e.Prunable(),
	}
	if name, ok := git.BranchName(e.Branch); ok {
		v.Branch = &name
	}
	if e.LockReason != nil {
		v.LockReason = *e.LockReason
	}
	if e.PrunableReason != nil {
		v.PrunableReason = *e.PrunableReason
	}
	if !e.ModTime.IsZero() {
		t := e.ModTime.UTC()
		v.ModTime = &t
	}
	if st := e.Status; st != nil && st.Err == nil {
		dirty := st.Dirty
		v.Dirty = &dirty
		v.Sync = st.Sync
		v.Ahead = st.Ahead
		v.Behind = st.Behind
	}
	return v
}

func views(entries []Entry) []entryView {
	out := make([]entryView, len(entries))
	for i, e := range entries {
		out[i] = viewOf(e)
	}
	return out
}

// RenderJSON writes entries as an indented JSON array.
func RenderJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views(entries))
}

// RenderYAML writes entries as a YAML sequence.
func RenderYAML(w io.Writer, entries []Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(views(entries)); err != nil {
		return err
	}
	return enc.Close()
}
