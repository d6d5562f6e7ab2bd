//go:build windows

package editor

func fileManagerCommand(path string, _ func(string) string) []string {
	return []string{"explorer", path}
}
