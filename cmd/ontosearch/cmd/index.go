package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ontosearch/internal/importer"
	"github.com/Aman-CERP/ontosearch/internal/index"
	"github.com/Aman-CERP/ontosearch/internal/ui"
)

type indexOptions struct {
	types      []string
	jsonOutput bool
	check      bool
	parallel   int
}

func newIndexCmd(global *globalOptions) *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index <ontology.yaml>",
		Short: "Build the metadata cache and show what it contains",
		Long: `Build the metadata cache for an ontology and print its status.

With --check every importer is also run on its own, concurrently, and its
record count or failure is reported. Use it to find the importer behind a
short cache.`,
		Example: `  ontosearch index pizza.yaml
  ontosearch index pizza.yaml --type display-name --json
  ontosearch index pizza.yaml --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd, global, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.types, "type", "t", nil, "Search types to index (repeatable)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output status as JSON")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Dry-run each importer and report its result")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 0, "Importers checked at once (0 = number of CPUs)")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, global *globalOptions, path string, opts indexOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}

	eng, err := openEngine(path, cfg, opts.types, nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	if !opts.jsonOutput {
		progressCfg := ui.NewConfig(cmd.ErrOrStderr(), ui.WithNoColor(global.noColor))
		defer eng.coord.AddSink(ui.NewPlainRenderer(progressCfg))()
	}

	if err := eng.coord.Rebuild(); err != nil {
		return err
	}
	if err := eng.coord.Wait(ctx); err != nil {
		return err
	}

	info := statusInfo(path, eng, eng.coord.Stats())
	renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), global.noColor || opts.jsonOutput)
	if opts.jsonOutput && !opts.check {
		return renderer.RenderJSON(info)
	}
	if !opts.jsonOutput {
		if err := renderer.Render(info); err != nil {
			return err
		}
	}

	if !opts.check {
		return nil
	}
	results, err := eng.importers.Check(ctx, eng.doc, eng.coord.EnabledTypes(), opts.parallel)
	if err != nil {
		return err
	}
	if opts.jsonOutput {
		return renderer.RenderJSON(withCheck(info, results))
	}
	printCheck(cmd, results)
	return nil
}

func statusInfo(path string, eng *engine, stats index.Stats) ui.StatusInfo {
	byType := make(map[string]int, len(stats.ByType))
	for t, n := range stats.ByType {
		byType[string(t)] = n
	}

	imps := eng.importers.Importers()
	names := make([]string, 0, len(imps))
	for _, imp := range imps {
		names = append(names, imp.Name())
	}

	return ui.StatusInfo{
		Source:           path,
		Records:          stats.Records,
		ByType:           byType,
		EnabledTypes:     eng.coord.EnabledTypes().Strings(),
		Importers:        names,
		ImporterFailures: stats.ImporterFailures,
		Rebuilds:         stats.Rebuilds,
		LastRebuild:      stats.LastRebuild,
		WatcherStatus:    "n/a",
	}
}

// withCheck folds dry-run failures into the JSON status. Records stay as the
// cache reported them.
func withCheck(info ui.StatusInfo, results []importer.CheckResult) ui.StatusInfo {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > info.ImporterFailures {
		info.ImporterFailures = failed
	}
	return info
}

func printCheck(cmd *cobra.Command, results []importer.CheckResult) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "  Importer check:")

	sorted := append([]importer.CheckResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return (sorted[i].Err != nil) && (sorted[j].Err == nil)
	})
	for _, r := range sorted {
		switch {
		case r.Err != nil:
			_, _ = fmt.Fprintf(out, "    %-18s FAILED  %v\n", r.Importer, r.Err)
		case r.Skipped:
			_, _ = fmt.Fprintf(out, "    %-18s skipped\n", r.Importer)
		default:
			_, _ = fmt.Fprintf(out, "    %-18s %d records in %s\n", r.Importer, r.Records, ui.FormatDuration(r.Elapsed))
		}
	}
}
