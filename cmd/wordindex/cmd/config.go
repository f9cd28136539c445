package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/wordindex/configs"
	"github.com/Aman-CERP/wordindex/internal/config"
	"github.com/Aman-CERP/wordindex/internal/output"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Inspect and create wordindex configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/wordindex/config.yaml)
  3. Project config (.wordindex.yaml)
  4. Environment variables (WORDINDEX_*)
  5. Command-line flags`,
	}

	cmd.AddCommand(newConfigShowCmd(root))
	cmd.AddCommand(newConfigInitCmd(root))
	cmd.AddCommand(newConfigPathCmd(root))

	return cmd
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the configuration after merging defaults, config files and environment variables.`,
		Args:  cobra.NoArgs,
		RunE: root.runE(func(cmd *cobra.Command, _ []string) error {
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(root.cfg)
			}
			data, err := yaml.Marshal(root.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}),
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var (
		force     bool
		user      bool
		effective bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented configuration file with defaults",
		Long: `Write the commented default configuration to .wordindex.yaml in the
current directory, or to the user config file with --user. With
--effective the merged configuration is written instead.

An existing file is left alone unless --force is given, in which case it
is backed up first.`,
		Example: `  # Create a project config
  wordindex config init

  # Overwrite the user config, keeping a backup
  wordindex config init --user --force

  # Freeze the current environment overrides into a project config
  WORDINDEX_MAX_BATCH_SIZE=8 wordindex config init --effective`,
		Args: cobra.NoArgs,
		RunE: root.runE(func(cmd *cobra.Command, _ []string) error {
			path := config.ProjectConfigName
			if user {
				path = config.GetUserConfigPath()
			}
			var cfg *config.Config
			if effective {
				cfg = root.cfg
			}
			return runConfigInit(cmd, path, cfg, force)
		}),
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file after backing it up")
	cmd.Flags().BoolVar(&user, "user", false, "Write the user config instead of the project config")
	cmd.Flags().BoolVar(&effective, "effective", false, "Write the effective configuration instead of the commented template")

	return cmd
}

func newConfigPathCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print config file paths",
		Args:  cobra.NoArgs,
		RunE: root.runE(func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "user:    %s\n", config.GetUserConfigPath())
			project := config.ProjectConfigPath(".")
			if project == "" {
				project = config.ProjectConfigName + " (not found)"
			}
			_, err := fmt.Fprintf(out, "project: %s\n", project)
			return err
		}),
	}
}

// runConfigInit writes cfg to path, or the commented template when cfg is nil.
func runConfigInit(cmd *cobra.Command, path string, cfg *config.Config, force bool) error {
	out := output.New(cmd.OutOrStdout())

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Status("💡", "Use --force to overwrite it (a backup is kept)")
			return nil
		}
		backupPath, err := config.Backup(path)
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
		out.Statusf("💾", "Backup: %s", backupPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if cfg != nil {
		if err := cfg.WriteYAML(path); err != nil {
			return err
		}
	} else if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out.Success("Created configuration")
	out.Statusf("📁", "Location: %s", path)
	return nil
}
