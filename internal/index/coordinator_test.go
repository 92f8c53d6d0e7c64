package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
	"github.com/Aman-CERP/ontosearch/internal/importer"
	"github.com/Aman-CERP/ontosearch/internal/metadata"
	"github.com/Aman-CERP/ontosearch/internal/ontology"
	"github.com/Aman-CERP/ontosearch/internal/search"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubImporter emits fixed texts under one type. It can block, fail or panic.
type stubImporter struct {
	name  string
	typ   metadata.SearchType
	texts []string
	err   error
	panic bool

	block   chan struct{}
	entered chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func newStub(name string, typ metadata.SearchType, texts ...string) *stubImporter {
	return &stubImporter{name: name, typ: typ, texts: texts}
}

func (s *stubImporter) blocking() *stubImporter {
	s.block = make(chan struct{})
	s.entered = make(chan struct{})
	return s
}

func (s *stubImporter) Name() string { return s.name }

func (s *stubImporter) Handles(types metadata.TypeSet) bool { return types.Contains(s.typ) }

func (s *stubImporter) Import(importer.Document, metadata.TypeSet) ([]metadata.Record, error) {
	s.calls.Add(1)
	if s.entered != nil {
		s.once.Do(func() { close(s.entered) })
	}
	if s.block != nil {
		<-s.block
	}
	if s.panic {
		panic("importer exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]metadata.Record, 0, len(s.texts))
	for i, text := range s.texts {
		ref := metadata.EntityRef{Kind: ontology.KindClass, IRI: fmt.Sprintf("http://example.org/%s/%d", s.name, i)}
		out = append(out, metadata.NewRecord(s.typ, s.name, ref, text, text))
	}
	return out, nil
}

type eventSink struct {
	mu       sync.Mutex
	events   []string
	progress []int
	onProg   func()
}

func (s *eventSink) add(e string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) IndexingStarted()  { s.add("indexing_started") }
func (s *eventSink) IndexingFinished() { s.add("indexing_finished") }
func (s *eventSink) SearchStarted()    { s.add("search_started") }
func (s *eventSink) SearchFinished()   { s.add("search_finished") }

func (s *eventSink) SearchProgressed(percent, _ int) {
	s.mu.Lock()
	s.progress = append(s.progress, percent)
	hook := s.onProg
	s.onProg = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (s *eventSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *eventSink) Progress() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.progress...)
}

func newTestCoordinator(t *testing.T, opts Options) *Coordinator {
	t.Helper()
	if opts.Document == nil {
		opts.Document = ontology.NewDocument("http://example.org/test")
	}
	if opts.Logger == nil {
		opts.Logger = testLogger()
	}
	c, err := NewCoordinator(opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	return c
}

func waitIdle(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

// collector counts handler invocations per query.
type collector struct {
	mu      sync.Mutex
	calls   map[int]int
	results map[int][]search.Result
}

func newCollector() *collector {
	return &collector{calls: map[int]int{}, results: map[int][]search.Result{}}
}

func (c *collector) handler(n int) search.ResultHandler {
	return func(results []search.Result) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.calls[n]++
		c.results[n] = results
	}
}

func (c *collector) Calls(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[n]
}

func (c *collector) Results(n int) []search.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[n]
}

func TestNewCoordinator_RequiresDocument(t *testing.T) {
	_, err := NewCoordinator(Options{})

	require.Error(t, err)
	assert.Equal(t, ontoerrors.ErrCodeInvalidInput, ontoerrors.GetCode(err))
}

func TestCoordinator_FirstQueryRebuilds(t *testing.T) {
	// Given: a fresh coordinator
	imp := newStub("names", metadata.TypeDisplayName, "Pizza", "Topping", "PizzaBase")
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(imp)})
	require.True(t, c.Stats().Stale)

	// When: the first query is submitted
	got := newCollector()
	id, err := c.Submit(search.Request{Pattern: "Pizza"}, got.handler(1))
	require.NoError(t, err)
	waitIdle(t, c)

	// Then: one rebuild ran before the scan and results were delivered
	assert.Equal(t, uint64(1), id)
	stats := c.Stats()
	assert.Equal(t, 1, stats.Rebuilds)
	assert.Equal(t, 3, stats.Records)
	assert.False(t, stats.Stale)
	assert.Equal(t, 1, got.Calls(1))
	require.Len(t, got.Results(1), 2)
	assert.Equal(t, "Pizza", got.Results(1)[0].Record.Text())
	assert.Equal(t, "PizzaBase", got.Results(1)[1].Record.Text())
}

func TestCoordinator_MonotonicSupersession(t *testing.T) {
	// Given: the worker is held inside a rebuild
	gate := newStub("gate", metadata.TypeDisplayName, "alpha", "beta", "gamma").blocking()
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(gate)})
	require.NoError(t, c.Rebuild())
	<-gate.entered

	// When: N queries are submitted back to back
	const n = 20
	got := newCollector()
	var lastID uint64
	for i := 0; i < n; i++ {
		id, err := c.Submit(search.Request{Pattern: "a"}, got.handler(i))
		require.NoError(t, err)
		assert.Greater(t, id, lastID)
		lastID = id
	}
	close(gate.block)
	waitIdle(t, c)

	// Then: only the last handler ran, exactly once
	for i := 0; i < n-1; i++ {
		assert.Zero(t, got.Calls(i), "query %d should have been superseded", i)
	}
	assert.Equal(t, 1, got.Calls(n-1))
	assert.Len(t, got.Results(n-1), 3)
}

func TestCoordinator_SupersededQueryFiresNoCompletion(t *testing.T) {
	gate := newStub("gate", metadata.TypeDisplayName, "x").blocking()
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(gate)})
	sink := &eventSink{}
	c.AddSink(sink)

	_, err := c.Submit(search.Request{Pattern: "x"}, nil)
	require.NoError(t, err)
	<-gate.entered
	_, err = c.Submit(search.Request{Pattern: "x"}, nil)
	require.NoError(t, err)
	close(gate.block)
	waitIdle(t, c)

	assert.Equal(t, []string{"indexing_started", "indexing_finished", "search_started", "search_finished"}, sink.Events())
}

func TestCoordinator_OneRebuildPerInvalidation(t *testing.T) {
	imp := newStub("names", metadata.TypeDisplayName, "one", "two")
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(imp)})

	// Given: a warm cache
	_, err := c.Submit(search.Request{Pattern: "o"}, nil)
	require.NoError(t, err)
	waitIdle(t, c)
	require.Equal(t, 1, c.Stats().Rebuilds)

	// When: invalidated and queried twice in a row
	c.Invalidate()
	_, err = c.Submit(search.Request{Pattern: "o"}, nil)
	require.NoError(t, err)
	_, err = c.Submit(search.Request{Pattern: "t"}, nil)
	require.NoError(t, err)
	waitIdle(t, c)

	// Then: exactly one more rebuild
	assert.Equal(t, 2, c.Stats().Rebuilds)
	assert.Equal(t, int32(2), imp.calls.Load())
}

func TestCoordinator_ConcurrentSubmittersRebuildOnce(t *testing.T) {
	imp := newStub("names", metadata.TypeDisplayName, "one", "two")
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(imp), QueueSize: 128})

	// Given: an invalidated cache
	c.Invalidate()

	// When: many goroutines submit at once
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Submit(search.Request{Pattern: "o"}, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	waitIdle(t, c)

	// Then: the stale flag was consumed exactly once
	assert.Equal(t, 1, c.Stats().Rebuilds)
	assert.Equal(t, uint64(32), c.Stats().LatestGeneration)
}

func TestCoordinator_InvalidateDoesNotAbortRunningScan(t *testing.T) {
	texts := make([]string, 200)
	for i := range texts {
		texts[i] = fmt.Sprintf("entity %d", i)
	}
	c := newTestCoordinator(t, Options{
		Importers: importer.NewManager(newStub("names", metadata.TypeDisplayName, texts...)),
	})

	// Given: a sink that invalidates the cache mid-scan
	sink := &eventSink{onProg: c.Invalidate}
	c.AddSink(sink)

	// When: a query runs
	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: "entity"}, got.handler(1))
	require.NoError(t, err)
	waitIdle(t, c)

	// Then: the scan completed and delivered; the next query will rebuild
	assert.Equal(t, 1, got.Calls(1))
	assert.Len(t, got.Results(1), 200)
	assert.True(t, c.Stats().Stale)
}

func TestCoordinator_CancelOnInvalidateAbortsRunningScan(t *testing.T) {
	texts := make([]string, 200)
	for i := range texts {
		texts[i] = fmt.Sprintf("entity %d", i)
	}
	c := newTestCoordinator(t, Options{
		Importers:          importer.NewManager(newStub("names", metadata.TypeDisplayName, texts...)),
		CancelOnInvalidate: true,
	})
	sink := &eventSink{onProg: c.Invalidate}
	c.AddSink(sink)

	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: "entity"}, got.handler(1))
	require.NoError(t, err)
	waitIdle(t, c)

	assert.Zero(t, got.Calls(1))
	assert.NotContains(t, sink.Events(), "search_finished")
}

func TestCoordinator_RebuildIsNotSupersedable(t *testing.T) {
	// Given: two importers, the first holding the worker mid-rebuild
	first := newStub("first", metadata.TypeDisplayName, "a1", "a2").blocking()
	second := newStub("second", metadata.TypeDisplayName, "b1")
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(first, second)})
	sink := &eventSink{}
	c.AddSink(sink)

	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: "1"}, got.handler(1))
	require.NoError(t, err)
	<-first.entered

	// When: a newer query arrives during the rebuild
	_, err = c.Submit(search.Request{Pattern: "1"}, got.handler(2))
	require.NoError(t, err)
	close(first.block)
	waitIdle(t, c)

	// Then: the rebuild ran every importer; only the newer query delivered
	assert.Equal(t, int32(1), second.calls.Load())
	assert.Equal(t, 3, c.Stats().Records)
	assert.Equal(t, 1, c.Stats().Rebuilds)
	assert.Zero(t, got.Calls(1))
	assert.Equal(t, 1, got.Calls(2))
	assert.Len(t, got.Results(2), 2)

	events := sink.Events()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, "indexing_started", events[0])
	assert.Equal(t, "indexing_finished", events[1])
}

func TestCoordinator_ImporterFailureIsolation(t *testing.T) {
	// Given: a failing and a panicking importer between two healthy ones
	good1 := newStub("good1", metadata.TypeDisplayName, "apple")
	failing := newStub("failing", metadata.TypeIRI, "never")
	failing.err = errors.New("disk on fire")
	panicking := newStub("panicking", metadata.TypeAnnotationValue, "never")
	panicking.panic = true
	good2 := newStub("good2", metadata.TypeLogicalAxiom, "apple SubClassOf fruit")

	c := newTestCoordinator(t, Options{Importers: importer.NewManager(good1, failing, panicking, good2)})
	sink := &eventSink{}
	c.AddSink(sink)

	// When: the cache is rebuilt
	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: "apple"}, got.handler(1))
	require.NoError(t, err)
	waitIdle(t, c)

	// Then: healthy importers contributed and the rebuild finished
	stats := c.Stats()
	assert.Equal(t, 2, stats.Records)
	assert.Equal(t, 2, stats.ImporterFailures)
	assert.Equal(t, 1, got.Calls(1))
	assert.Len(t, got.Results(1), 2)
	assert.Contains(t, sink.Events(), "indexing_finished")
}

func TestCoordinator_PanickingImporterStillFinishesIndexing(t *testing.T) {
	boom := newStub("boom", metadata.TypeDisplayName)
	boom.panic = true
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(boom)})
	sink := &eventSink{}
	c.AddSink(sink)

	require.NoError(t, c.Rebuild())
	waitIdle(t, c)

	assert.Equal(t, []string{"indexing_started", "indexing_finished"}, sink.Events())
}

func TestCoordinator_EmptyStore(t *testing.T) {
	// Given: a document with nothing in it
	c := newTestCoordinator(t, Options{})
	sink := &eventSink{}
	c.AddSink(sink)

	// When: querying
	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: ".*"}, got.handler(1))
	require.NoError(t, err)
	waitIdle(t, c)

	// Then: start/finish exactly once each, no progress, empty results
	events := sink.Events()
	assert.Equal(t, []string{"indexing_started", "indexing_finished", "search_started", "search_finished"}, events)
	assert.Empty(t, sink.Progress())
	assert.Equal(t, 1, got.Calls(1))
	assert.NotNil(t, got.Results(1))
	assert.Empty(t, got.Results(1))
}

func TestCoordinator_ProgressEvents(t *testing.T) {
	c := newTestCoordinator(t, Options{
		Importers: importer.NewManager(newStub("n", metadata.TypeDisplayName, "a", "b", "c", "d")),
	})
	sink := &eventSink{}
	c.AddSink(sink)

	_, err := c.Submit(search.Request{Pattern: "a"}, nil)
	require.NoError(t, err)
	waitIdle(t, c)

	assert.Equal(t, []int{25, 50, 75, 100}, sink.Progress())
}

func testDocument() *ontology.Document {
	doc := ontology.NewDocument("http://example.org/pizza")
	doc.AddEntity(ontology.Entity{IRI: "http://example.org/pizza#Pizza", Kind: ontology.KindClass})
	doc.AddEntity(ontology.Entity{IRI: "http://example.org/pizza#PizzaTopping", Kind: ontology.KindClass})
	doc.AddEntity(ontology.Entity{IRI: "http://example.org/pizza#hasTopping", Kind: ontology.KindObjectProperty})
	doc.Annotate(ontology.Annotation{Subject: "http://example.org/pizza#Pizza", Property: "rdfs:comment", Value: "A Pizza is a baked dish"})
	doc.AddAxiom(ontology.Axiom{Subject: "http://example.org/pizza#Pizza", Text: "Pizza SubClassOf hasTopping some PizzaTopping"})
	return doc
}

func TestCoordinator_TypeFiltering(t *testing.T) {
	// Given: the builtin importers over a real document
	doc := testDocument()
	c := newTestCoordinator(t, Options{Document: doc})

	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: "Pizza"}, got.handler(1))
	require.NoError(t, err)
	waitIdle(t, c)
	require.True(t, hasType(got.Results(1), metadata.TypeIRI))

	// When: the IRI type is disabled
	c.SetEnabledTypes(metadata.NewTypeSet(metadata.TypeDisplayName, metadata.TypeAnnotationValue, metadata.TypeLogicalAxiom))
	_, err = c.Submit(search.Request{Pattern: "Pizza"}, got.handler(2))
	require.NoError(t, err)
	waitIdle(t, c)

	// Then: no IRI records remain, although the pattern matches IRIs
	assert.False(t, hasType(got.Results(2), metadata.TypeIRI))
	assert.True(t, hasType(got.Results(2), metadata.TypeDisplayName))
	assert.Zero(t, c.Stats().ByType[metadata.TypeIRI])
	assert.False(t, c.IsEnabled(metadata.TypeIRI))
	assert.Equal(t, 2, c.Stats().Rebuilds)
}

func hasType(results []search.Result, typ metadata.SearchType) bool {
	for _, r := range results {
		if r.Record.Type() == typ {
			return true
		}
	}
	return false
}

func TestCoordinator_RebuildDeterminism(t *testing.T) {
	c := newTestCoordinator(t, Options{Document: testDocument()})

	// Given: a first rebuild
	require.NoError(t, c.Rebuild())
	waitIdle(t, c)
	first := c.store.Records()

	// When: invalidated and rebuilt again
	c.Invalidate()
	require.NoError(t, c.Rebuild())
	waitIdle(t, c)
	second := c.store.Records()

	// Then: identical ordered sequences
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, c.Stats().Rebuilds)
}

func TestCoordinator_InvalidPatternIsSynchronous(t *testing.T) {
	c := newTestCoordinator(t, Options{})

	id, err := c.Submit(search.Request{Pattern: "("}, func([]search.Result) {
		t.Error("handler must not run")
	})

	require.Error(t, err)
	assert.Zero(t, id)
	assert.Equal(t, ontoerrors.ErrCodeInvalidPattern, ontoerrors.GetCode(err))
	assert.Equal(t, uint64(0), c.Stats().LatestGeneration)
	waitIdle(t, c)
	assert.Zero(t, c.Stats().Rebuilds)
}

func TestCoordinator_QueueFull(t *testing.T) {
	// Given: a held worker and a queue of two
	gate := newStub("gate", metadata.TypeDisplayName, "x").blocking()
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(gate), QueueSize: 2})
	require.NoError(t, c.Rebuild())
	<-gate.entered

	_, err := c.Submit(search.Request{Pattern: "x"}, nil)
	require.NoError(t, err)
	_, err = c.Submit(search.Request{Pattern: "x"}, nil)
	require.NoError(t, err)

	// When: a third query is submitted
	_, err = c.Submit(search.Request{Pattern: "x"}, nil)

	// Then: it is rejected without consuming a generation id
	require.Error(t, err)
	assert.Equal(t, ontoerrors.ErrCodeQueueFull, ontoerrors.GetCode(err))
	assert.True(t, ontoerrors.IsRetryable(err))
	assert.Equal(t, uint64(2), c.Stats().LatestGeneration)

	close(gate.block)
	waitIdle(t, c)
}

func TestCoordinator_DispatcherDeliversResults(t *testing.T) {
	var dispatched atomic.Int32
	c := newTestCoordinator(t, Options{
		Importers: importer.NewManager(newStub("n", metadata.TypeDisplayName, "hit")),
		Dispatcher: func(fn func()) {
			dispatched.Add(1)
			fn()
		},
	})

	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: "hit"}, got.handler(1))
	require.NoError(t, err)
	waitIdle(t, c)

	assert.Equal(t, int32(1), dispatched.Load())
	assert.Equal(t, 1, got.Calls(1))
}

func TestCoordinator_WatchInvalidates(t *testing.T) {
	doc := testDocument()
	c := newTestCoordinator(t, Options{Document: doc})
	unsubscribe := c.Watch(doc)

	require.NoError(t, c.Rebuild())
	waitIdle(t, c)
	require.False(t, c.Stats().Stale)

	// When: the document changes
	doc.AddEntity(ontology.Entity{IRI: "http://example.org/pizza#Margherita", Kind: ontology.KindClass})

	// Then: the cache is stale and the next query sees the new entity
	assert.True(t, c.Stats().Stale)
	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: "Margherita"}, got.handler(1))
	require.NoError(t, err)
	waitIdle(t, c)
	assert.NotEmpty(t, got.Results(1))

	// After unsubscribing, changes no longer invalidate
	unsubscribe()
	doc.AddEntity(ontology.Entity{IRI: "http://example.org/pizza#Hawaiian", Kind: ontology.KindClass})
	assert.False(t, c.Stats().Stale)
}

func TestCoordinator_EnabledTypes(t *testing.T) {
	c := newTestCoordinator(t, Options{})
	assert.True(t, c.EnabledTypes().Equal(metadata.AllTypes()))

	c.SetEnabledTypes(metadata.NewTypeSet(metadata.TypeIRI))

	assert.True(t, c.IsEnabled(metadata.TypeIRI))
	assert.False(t, c.IsEnabled(metadata.TypeDisplayName))
	assert.Equal(t, 1, c.EnabledTypes().Len())
}

func TestCoordinator_Limit(t *testing.T) {
	c := newTestCoordinator(t, Options{
		Importers: importer.NewManager(newStub("n", metadata.TypeDisplayName, "a", "ab", "abc")),
	})

	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: "a", Limit: 2}, got.handler(1))
	require.NoError(t, err)
	waitIdle(t, c)

	assert.Len(t, got.Results(1), 2)
}

func TestCoordinator_Close(t *testing.T) {
	c := newTestCoordinator(t, Options{})

	require.NoError(t, c.Close(context.Background()))

	_, err := c.Submit(search.Request{Pattern: "x"}, nil)
	assert.Equal(t, ontoerrors.ErrCodeEngineClosed, ontoerrors.GetCode(err))
	assert.Equal(t, ontoerrors.ErrCodeEngineClosed, ontoerrors.GetCode(c.Rebuild()))
}

func TestCoordinator_CloseTimeoutDeliversNothing(t *testing.T) {
	// Given: a query held in its rebuild and a second query queued behind it
	gate := newStub("gate", metadata.TypeDisplayName, "x").blocking()
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(gate)})

	got := newCollector()
	_, err := c.Submit(search.Request{Pattern: "x"}, got.handler(1))
	require.NoError(t, err)
	<-gate.entered
	_, err = c.Submit(search.Request{Pattern: "x"}, got.handler(2))
	require.NoError(t, err)

	// When: Close times out and the rebuild is released afterwards
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Close(ctx), context.DeadlineExceeded)
	close(gate.block)

	// Then: the worker exits without calling either handler
	require.Eventually(t, func() bool { return !c.executor.Running() }, time.Second, 5*time.Millisecond)
	assert.Zero(t, got.Calls(1))
	assert.Zero(t, got.Calls(2))
	assert.Equal(t, uint64(1), c.executor.Stats().Skipped)
}

func TestCoordinator_RejectedSubmitNeverConsumesGeneration(t *testing.T) {
	// Given: a held worker, a small queue and concurrent submitters and waiters
	gate := newStub("gate", metadata.TypeDisplayName, "x").blocking()
	c := newTestCoordinator(t, Options{Importers: importer.NewManager(gate), QueueSize: 4})
	require.NoError(t, c.Rebuild())
	<-gate.entered

	var (
		mu       sync.Mutex
		accepted []uint64
		wg       sync.WaitGroup
	)
	waitCtx, cancelWaits := context.WithCancel(context.Background())
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if id, err := c.Submit(search.Request{Pattern: "x"}, nil); err == nil {
				mu.Lock()
				accepted = append(accepted, id)
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			_ = c.Wait(waitCtx)
		}()
	}

	// When: the waiters give up and the worker is released
	require.Eventually(t, func() bool { return c.executor.Pending() == c.executor.Capacity() }, time.Second, time.Millisecond)
	cancelWaits()
	wg.Wait()
	close(gate.block)
	require.Eventually(t, func() bool { return c.executor.Pending() == 0 }, time.Second, time.Millisecond)
	waitIdle(t, c)

	// Then: every generation id handed out belongs to an accepted query
	var highest uint64
	for _, id := range accepted {
		highest = max(highest, id)
	}
	assert.Equal(t, uint64(len(accepted)), highest)
	assert.Equal(t, highest, c.Stats().LatestGeneration)
}
