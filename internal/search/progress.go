package search

import (
	"log/slog"
	"sync"
)

// ProgressSink observes index and query lifecycle events.
// Methods are called on the engine's worker goroutine, never on the
// submitting goroutine.
type ProgressSink interface {
	IndexingStarted()
	IndexingFinished()
	SearchStarted()
	SearchProgressed(percent, matches int)
	SearchFinished()
}

// NopSink implements ProgressSink with no-ops. Embed it to observe a subset
// of events.
type NopSink struct{}

func (NopSink) IndexingStarted()          {}
func (NopSink) IndexingFinished()         {}
func (NopSink) SearchStarted()            {}
func (NopSink) SearchProgressed(int, int) {}
func (NopSink) SearchFinished()           {}

// Dispatcher marshals a call onto the execution context the caller needs
// (a UI event loop, for example).
type Dispatcher func(fn func())

// Inline is the default Dispatcher. It runs fn on the calling goroutine.
func Inline(fn func()) { fn() }

type sinkEntry struct {
	id   uint64
	sink ProgressSink
}

// Sinks fans events out to registered sinks in registration order.
// A panicking sink is logged and skipped; the remaining sinks still run.
type Sinks struct {
	logger *slog.Logger

	mu     sync.Mutex
	nextID uint64
	sinks  []sinkEntry
}

// NewSinks creates an empty fan-out. A nil logger uses slog.Default().
func NewSinks(logger *slog.Logger) *Sinks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sinks{logger: logger}
}

// Add registers sink and returns a func that unregisters it.
// The returned func is idempotent.
func (s *Sinks) Add(sink ProgressSink) (remove func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.sinks = append(s.sinks, sinkEntry{id: id, sink: sink})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Sinks) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.sinks {
		if e.id == id {
			s.sinks = append(s.sinks[:i:i], s.sinks[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered sinks.
func (s *Sinks) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sinks)
}

func (s *Sinks) snapshot() []ProgressSink {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ProgressSink, len(s.sinks))
	for i, e := range s.sinks {
		out[i] = e.sink
	}
	return out
}

func (s *Sinks) each(event string, fn func(ProgressSink)) {
	for _, sink := range s.snapshot() {
		s.call(event, sink, fn)
	}
}

func (s *Sinks) call(event string, sink ProgressSink, fn func(ProgressSink)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("progress sink panicked",
				slog.String("event", event),
				slog.Any("panic", r))
		}
	}()
	fn(sink)
}

func (s *Sinks) IndexingStarted() {
	s.each("indexing_started", func(p ProgressSink) { p.IndexingStarted() })
}

func (s *Sinks) IndexingFinished() {
	s.each("indexing_finished", func(p ProgressSink) { p.IndexingFinished() })
}

func (s *Sinks) SearchStarted() {
	s.each("search_started", func(p ProgressSink) { p.SearchStarted() })
}

func (s *Sinks) SearchProgressed(percent, matches int) {
	s.each("search_progressed", func(p ProgressSink) { p.SearchProgressed(percent, matches) })
}

func (s *Sinks) SearchFinished() {
	s.each("search_finished", func(p ProgressSink) { p.SearchFinished() })
}
