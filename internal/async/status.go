// Package async provides the background processing infrastructure for
// ontosearch: the single-worker task executor and a progress tracker that
// records the engine's lifecycle events.
package async

import (
	"sync"
	"time"
)

// EngineStatus represents the overall engine state.
type EngineStatus string

const (
	// StatusIdle indicates no rebuild or search is running.
	StatusIdle EngineStatus = "idle"
	// StatusIndexing indicates the metadata cache is being rebuilt.
	StatusIndexing EngineStatus = "indexing"
	// StatusSearching indicates a scan is in progress.
	StatusSearching EngineStatus = "searching"
)

// ProgressSnapshot is an immutable snapshot of engine progress.
type ProgressSnapshot struct {
	Status          string  `json:"status"`
	Percent         int     `json:"percent"`
	Matches         int     `json:"matches"`
	Rebuilds        int     `json:"rebuilds"`
	SearchesStarted int     `json:"searches_started"`
	SearchesDone    int     `json:"searches_done"`
	LastIndexingMS  int64   `json:"last_indexing_ms"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
}

// Progress provides thread-safe tracking of engine lifecycle events.
// It satisfies search.ProgressSink.
type Progress struct {
	mu sync.RWMutex

	status          EngineStatus
	percent         int
	matches         int
	rebuilds        int
	searchesStarted int
	searchesDone    int
	indexingStart   time.Time
	lastIndexing    time.Duration
	phaseStart      time.Time
}

// NewProgress creates an idle progress tracker.
func NewProgress() *Progress {
	return &Progress{
		status:     StatusIdle,
		phaseStart: time.Now(),
	}
}

// IndexingStarted records the start of a rebuild.
func (p *Progress) IndexingStarted() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.status = StatusIndexing
	p.indexingStart = now
	p.phaseStart = now
}

// IndexingFinished records the end of a rebuild.
func (p *Progress) IndexingFinished() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusIdle
	p.rebuilds++
	if !p.indexingStart.IsZero() {
		p.lastIndexing = time.Since(p.indexingStart)
	}
	p.phaseStart = time.Now()
}

// SearchStarted records the start of a scan.
func (p *Progress) SearchStarted() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusSearching
	p.percent = 0
	p.matches = 0
	p.searchesStarted++
	p.phaseStart = time.Now()
}

// SearchProgressed records scan progress.
func (p *Progress) SearchProgressed(percent, matches int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.percent = percent
	p.matches = matches
}

// SearchFinished records a completed (non-superseded) scan.
func (p *Progress) SearchFinished() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusIdle
	p.percent = 100
	p.searchesDone++
	p.phaseStart = time.Now()
}

// IsBusy returns true while a rebuild or scan is running.
func (p *Progress) IsBusy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.status != StatusIdle
}

// Snapshot returns an immutable copy of the current progress state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressSnapshot{
		Status:          string(p.status),
		Percent:         p.percent,
		Matches:         p.matches,
		Rebuilds:        p.rebuilds,
		SearchesStarted: p.searchesStarted,
		SearchesDone:    p.searchesDone,
		LastIndexingMS:  p.lastIndexing.Milliseconds(),
		ElapsedSeconds:  time.Since(p.phaseStart).Seconds(),
	}
}
