package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
	"github.com/Aman-CERP/ontosearch/internal/ontology"
	"github.com/Aman-CERP/ontosearch/internal/search"
	"github.com/Aman-CERP/ontosearch/internal/ui"
	"github.com/Aman-CERP/ontosearch/internal/watcher"
)

type interactiveOptions struct {
	types      []string
	ignoreCase bool
	literal    bool
	limit      int
	noWatch    bool
}

func newInteractiveCmd(global *globalOptions) *cobra.Command {
	var opts interactiveOptions

	cmd := &cobra.Command{
		Use:     "interactive <ontology.yaml>",
		Aliases: []string{"i"},
		Short:   "Search as you type",
		Long: `Open a full-screen search over an ontology.

Every keystroke submits a new query; results of older queries are discarded.
While watch.enabled is set, saving the ontology file reloads it, rebuilds the
metadata cache and re-runs the current query.`,
		Example: `  ontosearch interactive pizza.yaml
  ontosearch i pizza.yaml --ignore-case --type display-name`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), cmd, global, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.types, "type", "t", nil, "Search types to index (repeatable)")
	cmd.Flags().BoolVarP(&opts.ignoreCase, "ignore-case", "i", false, "Match without regard to case")
	cmd.Flags().BoolVarP(&opts.literal, "literal", "F", false, "Treat the query as a literal string")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results per query (0 = config search.max_results)")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Do not reload the ontology when the file changes")

	return cmd
}

func runInteractive(ctx context.Context, cmd *cobra.Command, global *globalOptions, path string, opts interactiveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	uiCfg := uiConfig(cmd, global, path)
	if !uiCfg.Interactive() {
		return ontoerrors.ValidationError("interactive mode needs a terminal", nil).
			WithSuggestion(fmt.Sprintf("Use 'ontosearch search %s <pattern>' in pipes and CI", path))
	}

	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}

	// The program needs the model, the model needs the engine and the engine
	// needs the program's Send. Messages sent before Run block the worker
	// until the event loop starts; callers never wait on the worker.
	var program *tea.Program
	send := func(msg tea.Msg) { program.Send(msg) }

	eng, err := openEngine(path, cfg, opts.types, ui.NewDispatcher(send))
	if err != nil {
		return err
	}
	defer eng.Close()
	defer eng.coord.AddSink(ui.NewProgramSink(send))()
	defer eng.coord.Watch(eng.doc)()

	template := search.Request{
		CaseInsensitive: opts.ignoreCase || cfg.Search.CaseInsensitive,
		Literal:         opts.literal,
		Limit:           opts.limit,
	}
	if template.Limit == 0 {
		template.Limit = cfg.Search.MaxResults
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	model := ui.NewSearchModel(eng.coord, template, uiCfg)
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))

	// Build the cache while the user starts typing.
	if err := eng.coord.Rebuild(); err != nil {
		return err
	}

	if cfg.Watch.Enabled && !opts.noWatch {
		window, err := cfg.DebounceWindow()
		if err != nil {
			return err
		}
		fw, err := newOntologyWatcher(window, eng.path, eng.doc, send)
		if err != nil {
			return err
		}
		defer func() { _ = fw.Stop() }()
		slog.Info("watching ontology", slog.String("path", eng.path), slog.String("mode", fw.Mode()))
		g.Go(func() error {
			err := fw.Start(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	return g.Wait()
}

// newOntologyWatcher reloads doc whenever the file at path settles after a
// change. The reload invalidates the cache through the coordinator's Watch
// subscription; send then asks the UI to re-run its query.
func newOntologyWatcher(window time.Duration, path string, doc *ontology.Document, send func(tea.Msg)) (*watcher.FileWatcher, error) {
	opts := watcher.DefaultOptions()
	opts.DebounceWindow = window
	opts.Logger = slog.Default()

	return watcher.NewFileWatcher(path, opts, func(events []watcher.FileEvent) {
		last := events[len(events)-1]
		if last.Operation == watcher.OpDelete {
			slog.Warn("ontology file removed, keeping last loaded version", slog.String("path", path))
			return
		}
		if err := doc.Reload(path); err != nil {
			slog.Warn("ontology reload failed, keeping last loaded version", ontoerrors.LogAttrs(err)...)
			return
		}
		slog.Info("ontology reloaded", slog.String("path", path), slog.Int("entities", len(doc.Entities())))
		send(ui.RefreshMsg{})
	})
}
