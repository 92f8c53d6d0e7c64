package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/Aman-CERP/ontosearch/internal/search"
)

// PlainRenderer prints engine progress as plain text lines (for CI/pipes).
// It implements search.ProgressSink.
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	styles  Styles
	step    int // only print progress when percent crosses a multiple of step
	shown   int // last printed bucket, -1 before the first one
	matches int
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:    cfg.Output,
		styles: cfg.Styles(),
		step:   10,
		shown:  -1,
	}
}

// IndexingStarted implements search.ProgressSink.
func (r *PlainRenderer) IndexingStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "%s Building search index...\n", r.styles.Active.Render("[INDEX]"))
}

// IndexingFinished implements search.ProgressSink.
func (r *PlainRenderer) IndexingFinished() {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "%s Done\n", r.styles.Active.Render("[INDEX]"))
}

// SearchStarted implements search.ProgressSink.
func (r *PlainRenderer) SearchStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = -1
	r.matches = 0
}

// SearchProgressed implements search.ProgressSink.
// Format: [SEARCH] 40% - 3 results
func (r *PlainRenderer) SearchProgressed(percent, matches int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matches = matches
	bucket := percent / r.step
	if bucket == r.shown {
		return
	}
	r.shown = bucket
	_, _ = fmt.Fprintf(r.out, "%s %d%% - %s\n",
		r.styles.Progress.Render("[SEARCH]"), percent, search.MatchLabel(matches))
}

// SearchFinished implements search.ProgressSink.
func (r *PlainRenderer) SearchFinished() {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.styles.Success.Render("[DONE]"), search.MatchLabel(r.matches))
}

var _ search.ProgressSink = (*PlainRenderer)(nil)
