// Package index coordinates the metadata cache and the queries run against it.
//
// All cache rebuilds and scans run on a single background worker, in
// submission order. Callers never block: Submit compiles the pattern, assigns
// the query a generation id and hands it to the worker. Only the newest query
// delivers results; older ones abort at their next per-record checkpoint.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aman-CERP/ontosearch/internal/async"
	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
	"github.com/Aman-CERP/ontosearch/internal/importer"
	"github.com/Aman-CERP/ontosearch/internal/metadata"
	"github.com/Aman-CERP/ontosearch/internal/ontology"
	"github.com/Aman-CERP/ontosearch/internal/search"
)

// Options configures a Coordinator.
type Options struct {
	// Document is the ontology the importers read. Required.
	Document importer.Document

	// Importers supplies the ordered importer list. The list is read at the
	// start of every rebuild. Defaults to importer.DefaultManager(nil).
	Importers *importer.Manager

	// Types is the initial enabled type set. An empty set enables all
	// builtin types.
	Types metadata.TypeSet

	// QueueSize bounds pending work (default: async.DefaultQueueSize).
	QueueSize int

	// PatternCacheSize bounds the compiled-pattern LRU
	// (default: search.DefaultPatternCacheSize).
	PatternCacheSize int

	// CancelOnInvalidate makes Invalidate also supersede the running query.
	// By default an invalidation only forces the next query to rebuild.
	CancelOnInvalidate bool

	// Dispatcher delivers results on the caller's execution context.
	// Defaults to search.Inline (the worker goroutine).
	Dispatcher search.Dispatcher

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Stats is a snapshot of coordinator state.
type Stats struct {
	Records          int                         `json:"records"`
	ByType           map[metadata.SearchType]int `json:"by_type"`
	Rebuilds         int                         `json:"rebuilds"`
	LastRebuild      time.Duration               `json:"last_rebuild_ns"`
	ImporterFailures int                         `json:"importer_failures"`
	LatestGeneration uint64                      `json:"latest_generation"`
	Stale            bool                        `json:"stale"`
	Pending          int                         `json:"pending"`
}

// Coordinator owns the metadata store and serializes every rebuild and scan
// through one executor.
type Coordinator struct {
	doc         importer.Document
	importers   *importer.Manager
	logger      *slog.Logger
	dispatch    search.Dispatcher
	cancelOnInv bool

	// store is only touched on the executor's worker.
	store    *metadata.Store
	tracker  *Tracker
	types    atomic.Pointer[metadata.TypeSet]
	executor *async.Executor
	compiler *search.Compiler
	sinks    *search.Sinks

	// submitMu makes "check capacity, assign id, enqueue" one step, so a
	// rejected query never consumes a generation id.
	submitMu sync.Mutex
	closed   atomic.Bool

	statsMu sync.Mutex
	stats   Stats
}

// NewCoordinator creates a coordinator and starts its worker.
// The cache starts stale: the first query triggers a rebuild.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Document == nil {
		return nil, ontoerrors.ValidationError("coordinator requires a document", nil)
	}
	if opts.Importers == nil {
		opts.Importers = importer.DefaultManager(nil)
	}
	if opts.Types.Len() == 0 {
		opts.Types = metadata.AllTypes()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = search.Inline
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		doc:         opts.Document,
		importers:   opts.Importers,
		logger:      logger,
		dispatch:    opts.Dispatcher,
		cancelOnInv: opts.CancelOnInvalidate,
		store:       metadata.NewStore(),
		tracker:     NewTracker(),
		executor:    async.NewExecutor(async.ExecutorConfig{QueueSize: opts.QueueSize, Logger: logger}),
		compiler:    search.NewCompiler(opts.PatternCacheSize),
		sinks:       search.NewSinks(logger),
		stats:       Stats{ByType: map[metadata.SearchType]int{}},
	}
	types := opts.Types
	c.types.Store(&types)

	c.executor.Start(context.Background())
	return c, nil
}

// Submit queues a query and returns its generation id.
//
// The pattern is compiled before anything is queued; a malformed pattern
// returns ERR_403_INVALID_PATTERN. handler is called at most once, with the
// complete result list, and only if no newer query was submitted meanwhile.
// The handler must not call Wait or Close when using the inline dispatcher.
func (c *Coordinator) Submit(req search.Request, handler search.ResultHandler) (uint64, error) {
	if c.closed.Load() {
		return 0, engineClosed()
	}

	pattern, err := c.compiler.Compile(req)
	if err != nil {
		return 0, err
	}

	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	if err := c.reserve(); err != nil {
		return 0, err
	}

	id := c.tracker.Next()
	err = c.executor.Submit(fmt.Sprintf("query-%d", id), func(ctx context.Context) error {
		c.runQuery(ctx, id, req, pattern, handler)
		return nil
	})
	if err != nil {
		return 0, c.submitError(err)
	}
	return id, nil
}

// Rebuild invalidates the cache and queues a rebuild without waiting for a
// query to trigger it.
func (c *Coordinator) Rebuild() error {
	if c.closed.Load() {
		return engineClosed()
	}

	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	if err := c.reserve(); err != nil {
		return err
	}

	c.tracker.MarkStale()
	err := c.executor.Submit("rebuild", func(ctx context.Context) error {
		if ctx.Err() == nil && c.tracker.TakeStale() {
			c.rebuild()
		}
		return nil
	})
	if err != nil {
		return c.submitError(err)
	}
	return nil
}

// Wait blocks until all work queued before the call has run.
func (c *Coordinator) Wait(ctx context.Context) error {
	// The fence takes a queue slot; taking it under submitMu keeps it from
	// landing between a Submit's capacity check and its enqueue.
	c.submitMu.Lock()
	done, err := c.executor.Fence()
	c.submitMu.Unlock()
	if err != nil {
		return c.submitError(err)
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invalidate marks the cache stale. The next query rebuilds it first.
// Safe to call from any goroutine.
func (c *Coordinator) Invalidate() {
	c.tracker.MarkStale()
	if c.cancelOnInv {
		c.tracker.Next()
	}
	c.logger.Debug("metadata cache invalidated",
		slog.Bool("cancel_running", c.cancelOnInv))
}

// SetEnabledTypes replaces the enabled type set and invalidates the cache.
func (c *Coordinator) SetEnabledTypes(types metadata.TypeSet) {
	t := metadata.NewTypeSet(types.Slice()...)
	c.types.Store(&t)
	c.Invalidate()
}

// EnabledTypes returns the current enabled type set.
func (c *Coordinator) EnabledTypes() metadata.TypeSet {
	return *c.types.Load()
}

// IsEnabled reports whether t is in the enabled type set.
func (c *Coordinator) IsEnabled(t metadata.SearchType) bool {
	return c.types.Load().Contains(t)
}

// AddSink registers a progress observer and returns its unregister func.
func (c *Coordinator) AddSink(sink search.ProgressSink) (remove func()) {
	return c.sinks.Add(sink)
}

// Watch invalidates the cache on every change notification from n.
func (c *Coordinator) Watch(n ontology.Notifier) (unsubscribe func()) {
	return n.OnChange(func(ch ontology.Change) {
		c.logger.Debug("document changed",
			slog.String("change", ch.Kind.String()),
			slog.String("iri", ch.IRI))
		c.Invalidate()
	})
}

// Stats returns a snapshot of cache and queue state.
func (c *Coordinator) Stats() Stats {
	c.statsMu.Lock()
	s := c.stats
	s.ByType = make(map[metadata.SearchType]int, len(c.stats.ByType))
	for k, v := range c.stats.ByType {
		s.ByType[k] = v
	}
	c.statsMu.Unlock()

	s.LatestGeneration = c.tracker.Latest()
	s.Stale = c.tracker.IsStale()
	s.Pending = c.executor.Pending()
	return s
}

// Close stops accepting work and waits for queued tasks to finish.
// When ctx ends first the running query is abandoned, queued tasks are
// skipped, no further results are delivered and ctx.Err() is returned.
func (c *Coordinator) Close(ctx context.Context) error {
	c.closed.Store(true)
	return c.executor.Stop(ctx)
}

// reserve fails with ERR_506_QUEUE_FULL when no queue slot is free.
// Callers hold submitMu; the worker only ever frees slots.
func (c *Coordinator) reserve() error {
	if c.executor.Pending() >= c.executor.Capacity() {
		return queueFull(c.executor.Capacity())
	}
	return nil
}

func (c *Coordinator) submitError(err error) error {
	switch {
	case errors.Is(err, async.ErrQueueFull):
		return queueFull(c.executor.Capacity())
	case errors.Is(err, async.ErrStopped):
		return engineClosed()
	default:
		return err
	}
}

// runQuery is the body of a query task. It runs on the worker.
// A cancelled ctx counts as superseded.
func (c *Coordinator) runQuery(ctx context.Context, id uint64, req search.Request, pattern *regexp.Regexp, handler search.ResultHandler) {
	if ctx.Err() == nil && c.tracker.TakeStale() {
		c.rebuild()
	}

	superseded := func() bool { return ctx.Err() != nil || !c.tracker.IsLatest(id) }
	if superseded() {
		c.logger.Debug("query superseded before scan", slog.Uint64("generation", id))
		return
	}

	c.sinks.SearchStarted()
	start := time.Now()

	results, completed := search.Scan(c.store, pattern, search.ScanOptions{
		Superseded: superseded,
		Progress:   c.sinks.SearchProgressed,
		Limit:      req.Limit,
	})
	if !completed {
		c.logger.Debug("query superseded during scan",
			slog.Uint64("generation", id),
			slog.Duration("elapsed", time.Since(start)))
		return
	}

	if ctx.Err() != nil {
		return
	}
	c.sinks.SearchFinished()
	c.logger.Info("search finished",
		slog.Uint64("generation", id),
		slog.String("pattern", pattern.String()),
		slog.Int("results", len(results)),
		slog.Int("records", c.store.Len()),
		slog.Duration("elapsed", time.Since(start)))

	if handler != nil {
		c.dispatch(func() { handler(results) })
	}
}

// rebuild repopulates the store from every importer that handles an
// enabled type. It runs on the worker and always runs to completion.
func (c *Coordinator) rebuild() {
	c.sinks.IndexingStarted()
	defer c.sinks.IndexingFinished()

	start := time.Now()
	types := c.EnabledTypes()
	failures := 0

	c.store.Reset()
	for _, imp := range c.importers.Importers() {
		if !imp.Handles(types) {
			continue
		}
		records, err := c.runImporter(imp, types)
		if err != nil {
			failures++
			c.logger.Warn("importer failed, continuing rebuild", ontoerrors.LogAttrs(err)...)
			continue
		}
		for _, r := range records {
			if types.Contains(r.Type()) {
				c.store.Append(r)
			}
		}
	}

	elapsed := time.Since(start)
	byType := c.store.CountByType()

	c.statsMu.Lock()
	c.stats.Records = c.store.Len()
	c.stats.ByType = byType
	c.stats.Rebuilds++
	c.stats.LastRebuild = elapsed
	c.stats.ImporterFailures += failures
	c.statsMu.Unlock()

	c.logger.Info("metadata cache rebuilt",
		slog.Int("records", c.store.Len()),
		slog.String("types", types.String()),
		slog.Int("importer_failures", failures),
		slog.Duration("elapsed", elapsed))
}

// runImporter calls imp, converting an error or panic into ERR_505.
func (c *Coordinator) runImporter(imp importer.Importer, types metadata.TypeSet) (records []metadata.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = ontoerrors.New(ontoerrors.ErrCodeImporterFailed, "importer panicked", fmt.Errorf("%v", r)).
				WithDetail("importer", imp.Name())
		}
	}()

	records, err = imp.Import(c.doc, types)
	if err != nil {
		return nil, ontoerrors.New(ontoerrors.ErrCodeImporterFailed, "importer failed", err).
			WithDetail("importer", imp.Name())
	}
	return records, nil
}

func queueFull(capacity int) error {
	return ontoerrors.New(ontoerrors.ErrCodeQueueFull, "search queue is full", async.ErrQueueFull).
		WithDetail("capacity", fmt.Sprint(capacity)).
		WithSuggestion("Retry the query; superseded queries drain quickly")
}

func engineClosed() error {
	return ontoerrors.New(ontoerrors.ErrCodeEngineClosed, "search engine is closed", nil)
}
