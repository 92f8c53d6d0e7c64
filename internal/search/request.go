// Package search implements the pattern-match scan over the metadata store,
// the progress-sink fan-out, and compiled-pattern caching.
package search

import (
	"regexp"

	"github.com/Aman-CERP/ontosearch/internal/metadata"
)

// Request describes one query. It is owned by the caller and read-only to
// the engine.
type Request struct {
	// Pattern is a regular expression, or a literal string when Literal is set.
	Pattern string

	// CaseInsensitive matches without regard to case.
	CaseInsensitive bool

	// Literal quotes Pattern so that metacharacters match themselves.
	Literal bool

	// Limit caps the number of results collected (0 = unlimited).
	Limit int
}

// Result is one matching record. Start and End are byte offsets of the first
// match within Record.Text().
type Result struct {
	Record  metadata.Record
	Pattern *regexp.Regexp
	Start   int
	End     int
}

// Matched returns the matched substring.
func (r Result) Matched() string {
	return r.Record.Text()[r.Start:r.End]
}

// Before returns the text preceding the match.
func (r Result) Before() string {
	return r.Record.Text()[:r.Start]
}

// After returns the text following the match.
func (r Result) After() string {
	return r.Record.Text()[r.End:]
}

// ResultHandler receives the complete result list of a query that was not
// superseded. It is invoked at most once per query.
type ResultHandler func(results []Result)
