//go:build !darwin && !linux && !windows

package editor

func fileManagerCommand(path string, _ func(string) string) []string {
	return []string{"xdg-open", path}
}
