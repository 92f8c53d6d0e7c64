package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/ontosearch/configs"
	"github.com/Aman-CERP/ontosearch/internal/config"
	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage ontosearch configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/ontosearch/config.yaml)
  3. Project config (.ontosearch.yaml)
  4. Environment variables (ONTOSEARCH_*)`,
		Example: `  # Create user config with defaults
  ontosearch config init

  # Show effective configuration
  ontosearch config show

  # Print user config file path
  ontosearch config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(global))
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from the template",
		Long: `Write the commented default configuration to the user config file, or
with --project to .ontosearch.yaml in the current directory.

An existing file is left alone unless --force is given; it is then backed up
next to the original before being replaced.`,
		Example: `  ontosearch config init
  ontosearch config init --project
  ontosearch config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetUserConfigPath()
			if project {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current directory: %w", err)
				}
				path = filepath.Join(cwd, config.ProjectConfigName)
			}
			return runConfigInit(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file (a backup is kept)")
	cmd.Flags().BoolVar(&project, "project", false, "Write the project config in the current directory")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil {
		if !force {
			return ontoerrors.ValidationError("configuration already exists", nil).
				WithDetail("path", path).
				WithSuggestion("Use --force to replace it; the old file is backed up")
		}
		backup, err := config.BackupFile(path)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Backup:  %s\n", backup)
	}

	if err := writeTemplate(path); err != nil {
		return ontoerrors.New(ontoerrors.ErrCodeFilePermission, "could not write configuration", err).
			WithDetail("path", path)
	}

	_, _ = fmt.Fprintf(out, "Created: %s\n", path)
	return nil
}

func writeTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(configs.ConfigTemplate), 0o644)
}

func newConfigShowCmd(global *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the configuration after merging defaults, the user and project
files, and environment variables. With the global --config flag only that
file and the environment are merged over the defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			return printConfig(cmd, cfg, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// printConfig writes cfg as YAML, or as JSON with the same snake_case keys.
func printConfig(cmd *cobra.Command, cfg *config.Config, jsonOutput bool) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if !jsonOutput {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to convert config: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}
