package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/Aman-CERP/ontosearch/internal/config"
	"github.com/Aman-CERP/ontosearch/internal/importer"
	"github.com/Aman-CERP/ontosearch/internal/index"
	"github.com/Aman-CERP/ontosearch/internal/metadata"
	"github.com/Aman-CERP/ontosearch/internal/ontology"
	"github.com/Aman-CERP/ontosearch/internal/search"
)

// closeTimeout bounds how long a command waits for queued work on exit.
const closeTimeout = 5 * time.Second

// engine bundles a loaded ontology with its coordinator.
type engine struct {
	path      string
	doc       *ontology.Document
	importers *importer.Manager
	coord     *index.Coordinator
}

// openEngine loads the ontology at path and starts a coordinator for it.
// types overrides the configured enabled types when non-empty.
func openEngine(path string, cfg *config.Config, types []string, dispatch search.Dispatcher) (*engine, error) {
	enabled, err := enabledTypes(cfg, types)
	if err != nil {
		return nil, err
	}

	doc, err := ontology.LoadFile(path)
	if err != nil {
		return nil, err
	}

	importers := importer.DefaultManager(nil)
	coord, err := index.NewCoordinator(index.Options{
		Document:           doc,
		Importers:          importers,
		Types:              enabled,
		QueueSize:          cfg.Engine.QueueSize,
		PatternCacheSize:   cfg.Search.PatternCacheSize,
		CancelOnInvalidate: cfg.Engine.CancelOnInvalidate,
		Dispatcher:         dispatch,
		Logger:             slog.Default().With(slog.String("ontology", path)),
	})
	if err != nil {
		return nil, err
	}

	return &engine{path: path, doc: doc, importers: importers, coord: coord}, nil
}

// Close drains queued work, giving up after closeTimeout.
func (e *engine) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := e.coord.Close(ctx); err != nil {
		slog.Warn("engine did not stop cleanly", slog.String("error", err.Error()))
	}
}

func enabledTypes(cfg *config.Config, override []string) (metadata.TypeSet, error) {
	if len(override) > 0 {
		return config.ParseTypes(override)
	}
	return cfg.Types()
}
