package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const bashZshWrapper = `# gwt shell integration
gwt() {
  if [[ "$1" == "cd" ]]; then
    local dir
    dir="$(command gwt cd "${@:2}")" && cd "$dir"
  else
    command gwt "$@"
  fi
}`

const fishWrapper = `# gwt shell integration
function gwt
  if test "$argv[1]" = "cd"
    set -l dir (command gwt cd $argv[2..])
    and cd $dir
  else
    command gwt $argv
  end
end`

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell [bash|zsh|fish]",
	Short: "Print a shell function that makes 'gwt cd' change directory",
	Long: `Print a shell function wrapping gwt so that 'gwt cd <name>' changes the
current shell's directory. The shell is taken from $SHELL when omitted.

Examples:
  eval "$(gwt shell)"              # bash / zsh, e.g. in ~/.bashrc
  gwt shell fish | source          # fish, e.g. in config.fish`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish"},
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := ""
		if len(args) == 1 {
			shell = args[0]
		} else {
			shell = detectShell(os.Getenv("SHELL"))
		}

		switch shell {
		case "fish":
			fmt.Fprintln(cmd.OutOrStdout(), fishWrapper)
		case "bash", "zsh":
			fmt.Fprintln(cmd.OutOrStdout(), bashZshWrapper)
		default:
			return fmt.Errorf("unsupported shell %q (valid: bash, zsh, fish)", shell)
		}
		return nil
	},
}

func detectShell(shellEnv string) string {
	switch {
	case strings.Contains(shellEnv, "fish"):
		return "fish"
	case strings.Contains(shellEnv, "zsh"):
		return "zsh"
	default:
		return "bash"
	}
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
