package cmd

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
	"github.com/Aman-CERP/ontosearch/internal/logging"
)

type logsOptions struct {
	lines   int
	level   string
	filter  string
	logFile string
}

func newLogsCmd(global *globalOptions) *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View ontosearch logs",
		Long: `Show the last entries of the ontosearch log file.

The file is taken from --file, then from logging.file in the configuration,
then from the default location (~/.ontosearch/logs/ontosearch.log).`,
		Example: `  ontosearch logs
  ontosearch logs -n 200 --level warn
  ontosearch logs --filter rebuild`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, global, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to read from the end of the file")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Only show lines matching this regular expression")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Log file path")

	return cmd
}

func runLogs(cmd *cobra.Command, global *globalOptions, opts logsOptions) error {
	cfg := logging.ViewerConfig{Level: opts.level, NoColor: global.noColor}
	if opts.level != "" {
		if _, err := logging.ParseLevel(opts.level); err != nil {
			return ontoerrors.ValidationError("invalid log level", err).
				WithDetail("level", opts.level)
		}
	}
	if opts.filter != "" {
		re, err := regexp.Compile(opts.filter)
		if err != nil {
			return ontoerrors.New(ontoerrors.ErrCodeInvalidPattern, "invalid filter pattern", err).
				WithDetail("filter", opts.filter)
		}
		cfg.Pattern = re
	}

	explicit := opts.logFile
	if explicit == "" {
		if c, err := loadConfig(global); err == nil && c.Logging.File != logging.DefaultLogPath() {
			explicit = c.Logging.File
		}
	}
	path, err := logging.FindLogFile(explicit)
	if err != nil {
		return ontoerrors.New(ontoerrors.ErrCodeFileNotFound, err.Error(), nil)
	}

	viewer := logging.NewViewer(cfg, cmd.OutOrStdout())
	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No matching entries in %s\n", path)
		return nil
	}
	viewer.Print(entries)
	return nil
}
