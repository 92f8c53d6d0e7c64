package cmd

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ontosearch/internal/async"
	"github.com/Aman-CERP/ontosearch/internal/search"
	"github.com/Aman-CERP/ontosearch/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	types      []string
	ignoreCase bool
	literal    bool
	limit      int
	jsonOutput bool
	quiet      bool // no progress lines on stderr
	stats      bool // engine progress snapshot on stderr
}

func newSearchCmd(global *globalOptions) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <ontology.yaml> <pattern>",
		Short: "Search an ontology once and print the matches",
		Long: `Search an ontology's metadata with a regular expression.

Builds the metadata cache, runs one query and prints every record whose text
matches, in cache order. Progress goes to stderr.

Examples:
  ontosearch search pizza.yaml 'Marg.*'
  ontosearch search pizza.yaml mozzarella -i --type annotation-value
  ontosearch search pizza.yaml 'some (' --literal
  ontosearch search pizza.yaml Topping --json --limit 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, global, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.types, "type", "t", nil, "Search types to index (repeatable): display-name, iri, annotation-value, logical-axiom")
	cmd.Flags().BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "Match without regard to case")
	cmd.Flags().BoolVarP(&opts.literal, "literal", "F", false, "Treat the pattern as a literal string")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 = config search.max_results)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print progress")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print an engine progress snapshot to stderr when done")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, global *globalOptions, path, pattern string, opts searchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}

	eng, err := openEngine(path, cfg, opts.types, search.Inline)
	if err != nil {
		return err
	}
	defer eng.Close()

	if !opts.quiet && !opts.jsonOutput {
		progressCfg := ui.NewConfig(cmd.ErrOrStderr(), ui.WithNoColor(global.noColor))
		remove := eng.coord.AddSink(ui.NewPlainRenderer(progressCfg))
		defer remove()
	}
	progress := async.NewProgress()
	defer eng.coord.AddSink(progress)()

	req := search.Request{
		Pattern:         pattern,
		CaseInsensitive: opts.ignoreCase || cfg.Search.CaseInsensitive,
		Literal:         opts.literal,
		Limit:           opts.limit,
	}
	if req.Limit == 0 {
		req.Limit = cfg.Search.MaxResults
	}

	slog.Info("search_started",
		slog.String("pattern", pattern),
		slog.Bool("case_insensitive", req.CaseInsensitive),
		slog.Bool("literal", req.Literal),
		slog.Int("limit", req.Limit))

	// The handler runs on the worker; Wait orders it before the read below.
	var results []search.Result
	if _, err := eng.coord.Submit(req, func(r []search.Result) { results = r }); err != nil {
		return err
	}
	if err := eng.coord.Wait(ctx); err != nil {
		return err
	}

	if opts.stats {
		enc := json.NewEncoder(cmd.ErrOrStderr())
		enc.SetIndent("", "  ")
		if err := enc.Encode(progress.Snapshot()); err != nil {
			return err
		}
	}

	printer := ui.NewResultPrinter(uiConfig(cmd, global, path))
	if opts.jsonOutput {
		return printer.PrintJSON(results)
	}
	printer.Print(results)
	return nil
}
