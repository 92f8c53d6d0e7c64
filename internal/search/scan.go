package search

import (
	"fmt"
	"regexp"

	"github.com/Aman-CERP/ontosearch/internal/metadata"
)

// ScanOptions configures a Scan.
type ScanOptions struct {
	// Superseded is polled before every record. Returning true aborts the scan.
	Superseded func() bool

	// Progress is called each time the integer percentage changes.
	Progress func(percent, matches int)

	// Limit stops collecting results once reached (0 = unlimited).
	// The scan still runs to 100%.
	Limit int
}

// Scan matches pattern against every record in store, in order, and returns
// one Result per record containing a match. Only the first match in each
// record is reported.
//
// completed is false when the scan was aborted because Superseded returned
// true; the partial results must then be discarded.
//
// An empty store produces no progress events.
func Scan(store *metadata.Store, pattern *regexp.Regexp, opts ScanOptions) (results []Result, completed bool) {
	total := store.Len()
	results = make([]Result, 0)
	percent := 0

	for i := 0; i < total; i++ {
		if opts.Superseded != nil && opts.Superseded() {
			return nil, false
		}

		rec := store.At(i)
		if opts.Limit <= 0 || len(results) < opts.Limit {
			if loc := pattern.FindStringIndex(rec.Text()); loc != nil {
				results = append(results, Result{
					Record:  rec,
					Pattern: pattern,
					Start:   loc[0],
					End:     loc[1],
				})
			}
		}

		next := (i + 1) * 100 / total
		if next != percent {
			percent = next
			if opts.Progress != nil {
				opts.Progress(percent, len(results))
			}
		}
	}

	return results, true
}

// MatchLabel returns the progress message for a match count:
// "1 result" for exactly one, "N results" otherwise.
func MatchLabel(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}
