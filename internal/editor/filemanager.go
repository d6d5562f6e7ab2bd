package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/keisukeshimizu/gwt/internal/logger"
)

// FileManagerCommand returns the argv that reveals path in the platform's
// file manager.
func FileManagerCommand(path string) []string {
	return fileManagerCommand(path, os.Getenv)
}

// OpenFileManager reveals path in the platform's file manager.
func OpenFileManager(ctx context.Context, path string) error {
	argv := FileManagerCommand(path)
	logger.Command(argv[0], argv[1:]...)
	if err := exec.CommandContext(ctx, argv[0], argv[1:]...).Run(); err != nil {
		return fmt.Errorf("failed to open %s: %w", argv[0], err)
	}
	return nil
}
