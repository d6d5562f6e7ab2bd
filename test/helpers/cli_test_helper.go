package helpers

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/keisukeshimizu/gwt/internal/logger"
)

// CLITestHelper provides utilities for testing CLI commands. Both the
// command's own output and the global logger are captured.
type CLITestHelper struct {
	t      *testing.T
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// NewCLITestHelper creates a new CLI test helper and routes the global
// logger into its buffers until the test ends.
func NewCLITestHelper(t *testing.T) *CLITestHelper {
	h := &CLITestHelper{
		t:      t,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	prev := logger.SetLogger(logger.NewWithWriters(h.stdout, h.stderr, false))
	t.Cleanup(func() { logger.SetLogger(prev) })
	return h
}

// ExecuteCommand runs root with args. Flags left over from earlier runs
// are reset first since cobra commands are package-level singletons.
func (h *CLITestHelper) ExecuteCommand(root *cobra.Command, args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()

	ResetFlags(root)
	root.SetOut(h.stdout)
	root.SetErr(h.stderr)
	root.SetArgs(args)

	return root.ExecuteContext(context.Background())
}

// ResetFlags restores every flag of cmd and its subcommands to its default.
func ResetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		ResetFlags(sub)
	}
}

// GetStdout returns the stdout output as a string
func (h *CLITestHelper) GetStdout() string {
	return h.stdout.String()
}

// GetStderr returns the stderr output as a string
func (h *CLITestHelper) GetStderr() string {
	return h.stderr.String()
}

// AssertStdoutContains asserts that stdout contains the expected string
func (h *CLITestHelper) AssertStdoutContains(expected string) {
	require.Contains(h.t, h.GetStdout(), expected, "stdout should contain: %s", expected)
}

// AssertStderrContains asserts that stderr contains the expected string
func (h *CLITestHelper) AssertStderrContains(expected string) {
	require.Contains(h.t, h.GetStderr(), expected, "stderr should contain: %s", expected)
}

// AssertStdoutNotContains asserts that stdout does not contain the string
func (h *CLITestHelper) AssertStdoutNotContains(unexpected string) {
	require.NotContains(h.t, h.GetStdout(), unexpected, "stdout should not contain: %s", unexpected)
}

// AssertCommandFailure asserts that a command failed with expected error
func AssertCommandFailure(t *testing.T, err error, expectedErrorMsg string) {
	t.Helper()
	require.Error(t, err, "command should fail")
	if expectedErrorMsg != "" {
		require.Contains(t, err.Error(), expectedErrorMsg, "error message should contain expected text")
	}
}

// NormalizeOutput trims trailing whitespace from each line and the output.
func NormalizeOutput(output string) string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
