package git

import (
	"errors"
	"fmt"
	"strings"
)

// ExternalCommandError is returned when a git invocation could not be
// started or exited with a nonzero status. Stderr carries git's raw
// diagnostic text.
type ExternalCommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalCommandError) Error() string {
	msg := e.Diagnostic()
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *ExternalCommandError) Unwrap() error {
	return e.Err
}

// Diagnostic returns git's stderr output with surrounding whitespace removed.
func (e *ExternalCommandError) Diagnostic() string {
	return strings.TrimSpace(e.Stderr)
}

// Exited reports whether git ran and exited with a nonzero status, as
// opposed to failing to start at all.
func (e *ExternalCommandError) Exited() bool {
	return e.ExitCode > 0
}

// IsExitStatus reports whether err is an ExternalCommandError for a git
// process that ran to completion with a nonzero exit status.
func IsExitStatus(err error) bool {
	var cmdErr *ExternalCommandError
	return errors.As(err, &cmdErr) && cmdErr.Exited()
}

// Diagnostic extracts git's stderr text from err, falling back to the
// error message itself.
func Diagnostic(err error) string {
	var cmdErr *ExternalCommandError
	if errors.As(err, &cmdErr) {
		if d := cmdErr.Diagnostic(); d != "" {
			return d
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
