package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/process"
)

// forgeCLI describes the command line client of a code hosting service
// that opens review requests in the browser.
type forgeCLI struct {
	bin        string
	installURL string
	noun       string   // "PR" or "MR"
	command    string   // gwt subcommand, for hints
	notFound   []string // stderr fragments meaning no request exists yet
	viewArgs   func(branch string) []string
	createArgs func(branch string) []string
}

var ghCLI = forgeCLI{
	bin:        "gh",
	installURL: "https://cli.github.com",
	noun:       "PR",
	command:    "pr",
	notFound:   []string{"no pull requests found"},
	viewArgs:   func(branch string) []string { return []string{"pr", "view", branch, "--web"} },
	createArgs: func(branch string) []string { return []string{"pr", "create", "--web", "--head", branch} },
}

var glabCLI = forgeCLI{
	bin:        "glab",
	installURL: "https://gitlab.com/gitlab-org/cli",
	noun:       "MR",
	command:    "mr",
	notFound:   []string{"no merge request found", "no open merge request"},
	viewArgs:   func(branch string) []string { return []string{"mr", "view", branch, "--web"} },
	createArgs: func(branch string) []string { return []string{"mr", "create", "--web", "--source-branch", branch} },
}

// openReview opens the review request for the branch of worktree name, or
// starts a new one when create is set. The client's output goes to out.
func (f forgeCLI) openReview(ctx context.Context, out io.Writer, name string, create bool) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	bin, err := exec.LookPath(f.bin)
	if err != nil {
		return fmt.Errorf("'%s' CLI not found. Install it from %s", f.bin, f.installURL)
	}

	entry, err := findWorktree(ctx, ws, name)
	if err != nil {
		return err
	}
	branch, attached := git.BranchName(entry.Branch)
	if !attached {
		return fmt.Errorf("'%s' is in detached HEAD state", entry.Name)
	}

	args := f.viewArgs(branch)
	if create {
		logger.Info("Creating %s for '%s'...", f.noun, branch)
		args = f.createArgs(branch)
	}

	logger.Command(f.bin, args...)
	child := exec.Command(bin, args...)
	child.Dir = entry.Path
	child.Stdin = os.Stdin
	child.Stdout = out
	var stderr bytes.Buffer
	child.Stderr = &stderr

	err = process.Run(child)
	if err == nil {
		return nil
	}
	if process.Interrupted(err) {
		return &exitError{code: interruptedExitCode}
	}

	diagnostic := strings.TrimSpace(stderr.String())
	if create {
		return fmt.Errorf("failed to create %s: %s", f.noun, diagnosticOr(diagnostic, err))
	}
	for _, fragment := range f.notFound {
		if strings.Contains(diagnostic, fragment) {
			return fmt.Errorf("no %s found for branch '%s'. Use 'gwt %s create %s' to create one",
				f.noun, branch, f.command, entry.Name)
		}
	}
	return fmt.Errorf("failed to view %s: %s", f.noun, diagnosticOr(diagnostic, err))
}

func diagnosticOr(diagnostic string, err error) string {
	if diagnostic != "" {
		return diagnostic
	}
	return err.Error()
}
