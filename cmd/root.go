package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keisukeshimizu/gwt/internal/logger"
	"github.com/keisukeshimizu/gwt/internal/workspace"
	"github.com/keisukeshimizu/gwt/internal/worktree"
)

// interruptedExitCode is the conventional status for a run stopped by SIGINT.
const interruptedExitCode = 130

var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gwt",
	Short: "Git worktree manager for bare-repository layouts",
	Long: `gwt manages a repository laid out as a bare object store (.bare) with one
worktree directory per branch next to it.

It decides how to create a worktree for a name (existing local branch,
remote branch, or a new branch from the default branch) and refuses to
remove worktrees that still hold unpushed or uncommitted work.

Examples:
  gwt clone https://github.com/org/repo.git   # Set up repo/.bare and repo/main
  gwt add feature/login                       # Create a worktree for a branch
  gwt list --status                           # Show worktrees with their state
  gwt rm feature/login                        # Remove it when it is safe
  cd "$(gwt cd main)"                         # Jump to a worktree`,
	Version:       workspace.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.UpdateVerbose()
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("config file: %s", used)
		}
	},
}

// exitError carries a process exit status without an error message, e.g.
// the status of a command started by `gwt run`.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	if errors.Is(err, worktree.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return interruptedExitCode
	}
	return 1
}

// Execute adds all child commands to the root command and sets flags appropriately.
// The command context is cancelled on the first interrupt or termination
// signal; running git commands are interrupted and no new work is started.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) {
			logger.Error("Error: %v", err)
		}
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/gwt/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output, including every git command")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable emoji prefixes")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "gwt"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("GWT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			logger.Warning("cannot read config file %s: %v", cfgFile, err)
		}
	}
}
