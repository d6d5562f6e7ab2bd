package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/process"
)

// Runner executes git commands. Implementations return stdout on success
// and an *ExternalCommandError otherwise.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// cancelGrace is how long git may take to exit after an interrupt caused by
// context cancellation before it is killed.
const cancelGrace = 5 * time.Second

// ExecRunner runs the real git binary.
type ExecRunner struct {
	// Binary defaults to "git".
	Binary string
}

// Run executes git with args in dir. Interrupts received while git runs are
// forwarded to it, and cancelling ctx interrupts git.
func (r ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := r.Binary
	if bin == "" {
		bin = "git"
	}

	if dir != "" {
		logger.Command(bin, append([]string{"-C", dir}, args...)...)
	} else {
		logger.Command(bin, args...)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Cancel = func() error { return process.Interrupt(cmd) }
	cmd.WaitDelay = cancelGrace
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := process.Run(cmd); err != nil {
		return stdout.String(), &ExternalCommandError{
			Args:     args,
			ExitCode: process.ExitCode(err),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	return stdout.String(), nil
}
