//go:build linux

package editor

// fileManagerCommand prefers wslview under WSL so the Windows explorer opens
// instead of a Linux file manager that may not exist.
func fileManagerCommand(path string, getenv func(string) string) []string {
	if getenv("WSL_DISTRO_NAME") != "" {
		return []string{"wslview", path}
	}
	return []string{"xdg-open", path}
}
