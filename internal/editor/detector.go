package editor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/process"
)

// ErrNoIDE is returned when no editor could be detected.
var ErrNoIDE = errors.New("No IDE found. Set one with: git config --global gwt.ide <ide>")

// Candidates are probed on PATH, in order, when nothing is configured.
var Candidates = []string{"zed", "nvim", "cursor", "code"}

// addSupported lists editors that accept --add to join the open workspace.
var addSupported = map[string]bool{"code": true, "cursor": true}

// ConfigReader reads a git config value; missing keys yield "".
type ConfigReader interface {
	ConfigGet(ctx context.Context, key string) (string, error)
}

// Detector works out which editor to launch.
type Detector struct {
	configIDE string
	git       ConfigReader

	getenv   func(string) string
	lookPath func(string) (string, error)
}

// NewDetector creates a new editor detector. configIDE is the `ide` value
// from the user config file and takes precedence over everything else.
func NewDetector(configIDE string, git ConfigReader) *Detector {
	return &Detector{
		configIDE: configIDE,
		git:       git,
		getenv:    os.Getenv,
		lookPath:  exec.LookPath,
	}
}

// Detect returns the editor command line. The order is the user config,
// git config gwt.ide, $VISUAL, known editors on PATH and finally $EDITOR.
func (d *Detector) Detect(ctx context.Context) (string, error) {
	if ide := strings.TrimSpace(d.configIDE); ide != "" {
		return ide, nil
	}

	if d.git != nil {
		ide, err := d.git.ConfigGet(ctx, "gwt.ide")
		if err != nil {
			logger.Debug("failed to read gwt.ide: %v", err)
		} else if ide != "" {
			return ide, nil
		}
	}

	if visual := d.getenv("VISUAL"); visual != "" {
		return visual, nil
	}

	for _, candidate := range Candidates {
		if _, err := d.lookPath(candidate); err == nil {
			return candidate, nil
		}
	}

	if editor := d.getenv("EDITOR"); editor != "" {
		return editor, nil
	}

	return "", ErrNoIDE
}

// Command builds the argv used to open path with ide. The ide string may
// carry its own flags, e.g. "code --wait".
func Command(ide, path string, add bool) []string {
	argv := strings.Fields(ide)
	if len(argv) == 0 {
		return nil
	}
	if add && addSupported[argv[0]] {
		argv = append(argv, "--add")
	}
	return append(argv, path)
}

// Open launches ide on path in the foreground, attached to the terminal.
func Open(ctx context.Context, ide, path string, add bool) error {
	argv := Command(ide, path, add)
	if len(argv) == 0 {
		return ErrNoIDE
	}

	logger.Command(argv[0], argv[1:]...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return process.Run(cmd)
}
