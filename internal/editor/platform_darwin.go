//go:build darwin

package editor

func fileManagerCommand(path string, _ func(string) string) []string {
	return []string{"open", path}
}
