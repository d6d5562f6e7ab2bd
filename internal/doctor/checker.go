package doctor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/tabwriter"

	gogitconfig "github.com/go-git/go-git/v5/config"

	"github.com/keisukeshimizu/gwt/internal/config"
	"github.com/keisukeshimizu/gwt/internal/editor"
	"github.com/keisukeshimizu/gwt/internal/git"
	"github.com/keisukeshimizu/gwt/internal/workspace"
)

// CheckStatus represents the status of a diagnostic check
type CheckStatus string

const (
	CheckStatusPass CheckStatus = "pass"
	CheckStatusWarn CheckStatus = "warn"
	CheckStatusFail CheckStatus = "fail"
)

// expectedFetchSpec is what `gwt init` configures for origin.
const expectedFetchSpec = "+refs/heads/*:refs/remotes/origin/*"

// CheckResult represents the result of a single diagnostic check
type CheckResult struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      CheckStatus `json:"status"`
	Details     string      `json:"details"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// DiagnosticSummary provides an overview of all checks
type DiagnosticSummary struct {
	Total   int  `json:"total"`
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Healthy bool `json:"healthy"`
}

// DiagnosticResult contains the results of all diagnostic checks
type DiagnosticResult struct {
	Checks  []CheckResult     `json:"checks"`
	Summary DiagnosticSummary `json:"summary"`
}

// Checker performs gwt setup diagnostics.
type Checker struct {
	ws       *workspace.Workspace
	wsErr    error
	userCfg  *config.Config
	cfgMgr   *config.Manager
	detector *editor.Detector

	gitVersion func(ctx context.Context) (string, error)
}

// NewChecker creates a new Checker instance. ws is nil when the current
// directory is not inside a gwt repository; wsErr then explains why.
func NewChecker(ws *workspace.Workspace, wsErr error, cfgMgr *config.Manager, userCfg *config.Config) *Checker {
	var reader editor.ConfigReader
	if ws != nil {
		reader = ws.Git()
	}
	ideSetting := ""
	if userCfg != nil {
		ideSetting = userCfg.IDE
	}
	return &Checker{
		ws:         ws,
		wsErr:      wsErr,
		userCfg:    userCfg,
		cfgMgr:     cfgMgr,
		detector:   editor.NewDetector(ideSetting, reader),
		gitVersion: installedGitVersion,
	}
}

func installedGitVersion(ctx context.Context) (string, error) {
	output, err := exec.CommandContext(ctx, "git", "--version").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// CheckSystem runs all diagnostic checks
func (c *Checker) CheckSystem(ctx context.Context) *DiagnosticResult {
	var checks []CheckResult

	checks = append(checks, c.CheckGitInstallation(ctx))
	checks = append(checks, c.CheckRepository())

	if c.ws != nil {
		checks = append(checks, c.CheckSetup())
		checks = append(checks, c.CheckLayout())
		checks = append(checks, c.CheckDefaultBranch())
		checks = append(checks, c.CheckWorktrees(ctx))
	}

	checks = append(checks, c.CheckEditor(ctx))
	checks = append(checks, c.CheckConfiguration())

	return &DiagnosticResult{
		Checks:  checks,
		Summary: c.calculateSummary(checks),
	}
}

// CheckGitInstallation checks if Git is properly installed
func (c *Checker) CheckGitInstallation(ctx context.Context) CheckResult {
	result := CheckResult{
		Name:        "Git Installation",
		Description: "Verify Git is installed and accessible",
	}

	version, err := c.gitVersion(ctx)
	if err != nil {
		result.Status = CheckStatusFail
		result.Details = "Git is not installed or not in PATH"
		result.Suggestions = []string{
			"Install Git from https://git-scm.com/",
			"Ensure Git is in your system PATH",
		}
		return result
	}

	result.Status = CheckStatusPass
	result.Details = fmt.Sprintf("Git is installed: %s", version)
	return result
}

// CheckRepository checks that a .bare layout was found
func (c *Checker) CheckRepository() CheckResult {
	result := CheckResult{
		Name:        "Repository",
		Description: "Verify the current directory is inside a gwt repository",
	}

	if c.ws == nil {
		result.Status = CheckStatusFail
		result.Details = "Not inside a gwt repository"
		if c.wsErr != nil {
			result.Details = c.wsErr.Error()
		}
		result.Suggestions = []string{
			"Clone with: gwt clone <url>",
			"Or run 'gwt init' next to an existing .bare directory",
		}
		return result
	}

	result.Status = CheckStatusPass
	result.Details = fmt.Sprintf("Root: %s", c.ws.Root)
	return result
}

// CheckSetup checks the [gwt] section written by init
func (c *Checker) CheckSetup() CheckResult {
	result := CheckResult{
		Name:        "gwt Setup",
		Description: "Verify the repository was initialized by gwt",
	}

	cfg, err := c.ws.Config()
	if err != nil {
		result.Status = CheckStatusFail
		result.Details = fmt.Sprintf("Cannot read .bare/config: %v", err)
		return result
	}

	switch {
	case cfg.Version == "":
		result.Status = CheckStatusFail
		result.Details = "gwt.version is not set"
		result.Suggestions = []string{"Run 'gwt init'"}
	case c.ws.NeedsUpgrade():
		result.Status = CheckStatusWarn
		result.Details = fmt.Sprintf("Initialized by v%s, running v%s", cfg.Version, workspace.Version)
		result.Suggestions = []string{"Run 'gwt init' to upgrade"}
	default:
		result.Status = CheckStatusPass
		result.Details = fmt.Sprintf("Initialized by v%s", cfg.Version)
	}
	return result
}

// CheckLayout checks the .git pointer file and origin's fetch refspec
func (c *Checker) CheckLayout() CheckResult {
	result := CheckResult{
		Name:        "Layout",
		Description: "Verify the .git pointer and remote configuration",
	}

	var problems []string

	content, err := os.ReadFile(filepath.Join(c.ws.Root, ".git"))
	if err != nil || strings.TrimSpace(string(content)) != "gitdir: ./.bare" {
		problems = append(problems, ".git does not point at ./.bare")
	}

	repoCfg, err := readRepoConfig(filepath.Join(c.ws.BareDir(), "config"))
	if err != nil {
		result.Status = CheckStatusFail
		result.Details = err.Error()
		return result
	}

	if origin, ok := repoCfg.Remotes["origin"]; ok {
		if !hasFetchSpec(origin.Fetch, expectedFetchSpec) {
			problems = append(problems, "origin is missing the "+expectedFetchSpec+" refspec")
		}
		if !repoCfg.Raw.Section("fetch").HasOption("prune") {
			problems = append(problems, "fetch.prune is not set")
		}
	}

	if len(problems) > 0 {
		result.Status = CheckStatusWarn
		result.Details = strings.Join(problems, "; ")
		result.Suggestions = []string{"Run 'gwt init' to repair the layout"}
		return result
	}

	result.Status = CheckStatusPass
	result.Details = "Layout looks good"
	return result
}

func readRepoConfig(path string) (*gogitconfig.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := gogitconfig.ReadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return cfg, nil
}

func hasFetchSpec(specs []gogitconfig.RefSpec, want string) bool {
	for _, spec := range specs {
		if spec.String() == want {
			return true
		}
	}
	return false
}

// CheckDefaultBranch checks that a default branch is recorded and has a
// worktree
func (c *Checker) CheckDefaultBranch() CheckResult {
	result := CheckResult{
		Name:        "Default Branch",
		Description: "Verify the default branch is configured",
	}

	branch := c.ws.DefaultBranch()
	if branch == "" {
		result.Status = CheckStatusWarn
		result.Details = "gwt.defaultBranch is not set; new branches start from master"
		result.Suggestions = []string{"Run 'gwt init' to detect it"}
		return result
	}

	if _, err := os.Stat(c.ws.WorktreePath(branch)); err != nil {
		result.Status = CheckStatusWarn
		result.Details = fmt.Sprintf("'%s' has no worktree", branch)
		result.Suggestions = []string{fmt.Sprintf("Create it with: gwt add %s", branch)}
		return result
	}

	result.Status = CheckStatusPass
	result.Details = fmt.Sprintf("'%s'", branch)
	return result
}

// CheckWorktrees checks for stale worktree metadata
func (c *Checker) CheckWorktrees(ctx context.Context) CheckResult {
	result := CheckResult{
		Name:        "Worktrees",
		Description: "Check worktree metadata",
	}

	worktrees, err := c.ws.Git().ListWorktrees(ctx)
	if err != nil {
		result.Status = CheckStatusFail
		result.Details = fmt.Sprintf("Cannot list worktrees: %s", git.Diagnostic(err))
		return result
	}

	var count, locked int
	var prunable []string
	for _, wt := range worktrees {
		if wt.IsBare {
			continue
		}
		count++
		if wt.Locked() {
			locked++
		}
		if wt.Prunable() {
			prunable = append(prunable, wt.Name)
		}
	}

	if len(prunable) > 0 {
		result.Status = CheckStatusWarn
		result.Details = fmt.Sprintf("Prunable: %s", strings.Join(prunable, ", "))
		result.Suggestions = []string{"Clean up with: git worktree prune"}
		return result
	}

	result.Status = CheckStatusPass
	result.Details = fmt.Sprintf("%d worktree(s), %d locked", count, locked)
	return result
}

// CheckEditor checks that `gwt edit` can find an editor
func (c *Checker) CheckEditor(ctx context.Context) CheckResult {
	result := CheckResult{
		Name:        "Editor",
		Description: "Check which editor gwt edit will launch",
	}

	ide, err := c.detector.Detect(ctx)
	if err != nil {
		result.Status = CheckStatusWarn
		result.Details = "No editor found"
		result.Suggestions = []string{
			"Set one with: git config --global gwt.ide <ide>",
			"Or add 'ide: <command>' to " + c.configPath(),
		}
		return result
	}

	result.Status = CheckStatusPass
	result.Details = ide
	return result
}

// CheckConfiguration validates the user config file
func (c *Checker) CheckConfiguration() CheckResult {
	result := CheckResult{
		Name:        "Configuration",
		Description: "Validate the gwt configuration file",
	}

	if c.userCfg == nil || c.cfgMgr == nil {
		result.Status = CheckStatusWarn
		result.Details = "Configuration could not be loaded"
		return result
	}

	if problems := c.cfgMgr.ValidateConfig(c.userCfg); len(problems) > 0 {
		result.Status = CheckStatusWarn
		result.Details = strings.Join(problems, "; ")
		result.Suggestions = []string{"Edit " + c.configPath()}
		return result
	}

	result.Status = CheckStatusPass
	if used := c.cfgMgr.ConfigFileUsed(); used != "" {
		result.Details = fmt.Sprintf("Loaded %s", used)
	} else {
		result.Details = "Using defaults"
	}
	return result
}

func (c *Checker) configPath() string {
	if c.cfgMgr != nil {
		if used := c.cfgMgr.ConfigFileUsed(); used != "" {
			return used
		}
	}
	if path, err := config.DefaultPath(); err == nil {
		return path
	}
	return "the config file"
}

func (c *Checker) calculateSummary(checks []CheckResult) DiagnosticSummary {
	summary := DiagnosticSummary{
		Total: len(checks),
	}

	for _, check := range checks {
		switch check.Status {
		case CheckStatusPass:
			summary.Passed++
		case CheckStatusWarn:
			summary.Warned++
		case CheckStatusFail:
			summary.Failed++
		}
	}

	summary.Healthy = summary.Failed == 0
	return summary
}

// FormatAsTable formats the diagnostic result as a table
func (r *DiagnosticResult) FormatAsTable() string {
	var output bytes.Buffer
	w := tabwriter.NewWriter(&output, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "CHECK\tSTATUS\tDETAILS")
	fmt.Fprintln(w, "-----\t------\t-------")

	for _, check := range r.Checks {
		details := check.Details
		if len(details) > 60 {
			details = details[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", check.Name, strings.ToUpper(string(check.Status)), details)
	}

	w.Flush()

	fmt.Fprintf(&output, "\nSummary: %d total, %d passed, %d warned, %d failed\n",
		r.Summary.Total, r.Summary.Passed, r.Summary.Warned, r.Summary.Failed)

	if r.Summary.Healthy {
		fmt.Fprintln(&output, "Overall Status: Healthy")
	} else {
		fmt.Fprintln(&output, "Overall Status: Issues Found")
	}

	return output.String()
}

// FormatAsJSON formats the diagnostic result as JSON
func (r *DiagnosticResult) FormatAsJSON() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal JSON: %s"}`, err.Error())
	}
	return string(data)
}

// FormatAsSimple formats the diagnostic result as a simple list
func (r *DiagnosticResult) FormatAsSimple() string {
	var output strings.Builder

	for _, check := range r.Checks {
		var icon string
		switch check.Status {
		case CheckStatusPass:
			icon = "✅"
		case CheckStatusWarn:
			icon = "⚠️"
		case CheckStatusFail:
			icon = "❌"
		}

		fmt.Fprintf(&output, "%s %s: %s\n", icon, check.Name, check.Details)
		for _, suggestion := range check.Suggestions {
			fmt.Fprintf(&output, "   💡 %s\n", suggestion)
		}
	}

	fmt.Fprintf(&output, "\nSummary: %d total, %d passed, %d warned, %d failed\n",
		r.Summary.Total, r.Summary.Passed, r.Summary.Warned, r.Summary.Failed)

	return output.String()
}

// GetOverallStatus returns the overall status based on all checks
func (r *DiagnosticResult) GetOverallStatus() CheckStatus {
	if r.Summary.Failed > 0 {
		return CheckStatusFail
	}
	if r.Summary.Warned > 0 {
		return CheckStatusWarn
	}
	return CheckStatusPass
}
