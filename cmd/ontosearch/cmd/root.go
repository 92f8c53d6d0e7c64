// Package cmd provides the CLI commands for ontosearch.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ontosearch/internal/config"
	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
	"github.com/Aman-CERP/ontosearch/internal/logging"
	"github.com/Aman-CERP/ontosearch/internal/ui"
	"github.com/Aman-CERP/ontosearch/pkg/version"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	debug      bool
	noColor    bool
	plain      bool
}

// NewRootCmd creates the root command for the ontosearch CLI.
func NewRootCmd() *cobra.Command {
	var (
		opts           globalOptions
		loggingCleanup func()
	)

	cmd := &cobra.Command{
		Use:   "ontosearch",
		Short: "Incremental regex search over ontology metadata",
		Long: `ontosearch searches the names, IRIs, annotation values and logical
axioms of an ontology with regular expressions.

The metadata cache is built in the background on first use and rebuilt
whenever the ontology changes. Every new query supersedes the one before it,
so interactive typing never waits for stale scans.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cleanup, err := setupLogging(opts)
			if err != nil {
				return err
			}
			loggingCleanup = cleanup
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if loggingCleanup != nil {
				loggingCleanup()
				loggingCleanup = nil
			}
			return nil
		},
	}

	cmd.SetVersionTemplate("ontosearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: user + project config)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to the log file and stderr")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&opts.plain, "plain", false, "Force plain text output")

	cmd.AddCommand(newSearchCmd(&opts))
	cmd.AddCommand(newInteractiveCmd(&opts))
	cmd.AddCommand(newIndexCmd(&opts))
	cmd.AddCommand(newConfigCmd(&opts))
	cmd.AddCommand(newLogsCmd(&opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	cmd, err := NewRootCmd().ExecuteC()
	if err != nil {
		fmt.Fprint(os.Stderr, formatError(cmd, err))
	}
	return err
}

// formatError renders err for the command that failed: JSON when it was run
// with --json, with cause and details under --debug, else the short CLI form.
func formatError(cmd *cobra.Command, err error) string {
	if cmd != nil {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if data, jerr := ontoerrors.FormatJSON(err); jerr == nil {
				return string(data) + "\n"
			}
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			return ontoerrors.FormatForUser(err, true) + "\n"
		}
	}
	return ontoerrors.FormatForCLI(err)
}

// loadConfig reads the configuration selected by the global flags.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return config.Load(cwd)
}

// setupLogging installs the default slog logger. A broken config falls back
// to default logging here; the command reports the config error itself.
func setupLogging(opts globalOptions) (func(), error) {
	logCfg := logging.DefaultConfig()
	if cfg, err := loadConfig(&opts); err == nil {
		logCfg = cfg.LoggingConfig(opts.debug)
	} else if opts.debug {
		logCfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.SetDefault(logger)
	if opts.debug {
		slog.Debug("debug logging enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Version))
	}
	return cleanup, nil
}

// uiConfig builds the UI config for a command's output stream.
func uiConfig(cmd *cobra.Command, opts *globalOptions, title string) ui.Config {
	return ui.NewConfig(cmd.OutOrStdout(),
		ui.WithNoColor(opts.noColor),
		ui.WithForcePlain(opts.plain),
		ui.WithTitle(title),
	)
}
