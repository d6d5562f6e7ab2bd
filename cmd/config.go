package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keisukeshimizu/gwt/internal/config"
	"github.com/keisukeshimizu/gwt/internal/logger"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the gwt config file",
	Long: `Manage the user config file ($HOME/.config/gwt/config.yaml).

Settings:
  ide     editor command for 'gwt edit'
  fetch   fetch remotes before add and sync (default true)
  format  default 'gwt list' format: table, names, json, yaml
  copy    files copied from the default branch into new worktrees

Every setting can also be given as a GWT_ environment variable, e.g.
GWT_FETCH=false.`,
	Aliases: []string{"cfg"},
}

// configShowCmd shows current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := configManager()
		cfg, err := manager.Decode()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if used := manager.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "# %s\n", used)
		} else {
			fmt.Fprintln(out, "# defaults (no config file)")
		}

		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}

		for _, problem := range manager.ValidateConfig(cfg) {
			logger.Warning("%s", problem)
		}
		return nil
	},
}

// configPathCmd prints the config file location
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// configInitCmd writes a config file with the defaults
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := configFilePath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", path)
		}

		manager := configManager()
		cfg, err := manager.Decode()
		if err != nil {
			return err
		}
		if err := manager.SaveConfig(cfg, path); err != nil {
			return err
		}

		logger.Success("Wrote %s", path)
		return nil
	},
}

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
}
