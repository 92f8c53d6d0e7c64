package index

import "sync/atomic"

// Tracker identifies the most recently submitted query and whether the
// metadata cache must be rebuilt before the next scan.
//
// The generation counter and the stale flag are independent. Generations
// only ever grow; invalidation sets the flag and never touches the counter.
// Only the executor's worker consumes the flag (TakeStale), so concurrent
// submitters cannot both schedule a rebuild for the same invalidation.
type Tracker struct {
	latest atomic.Uint64
	stale  atomic.Bool
}

// NewTracker returns a tracker that starts stale, so the first query builds
// the cache.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.stale.Store(true)
	return t
}

// Next assigns a new generation id, strictly greater than every id handed
// out before.
func (t *Tracker) Next() uint64 {
	return t.latest.Add(1)
}

// Latest returns the most recently assigned generation id (0 if none).
func (t *Tracker) Latest() uint64 {
	return t.latest.Load()
}

// IsLatest reports whether id is still the newest generation.
func (t *Tracker) IsLatest(id uint64) bool {
	return t.latest.Load() == id
}

// MarkStale flags the cache for rebuild.
func (t *Tracker) MarkStale() {
	t.stale.Store(true)
}

// IsStale reports whether a rebuild is pending.
func (t *Tracker) IsStale() bool {
	return t.stale.Load()
}

// TakeStale clears the stale flag and reports whether it was set.
// Exactly one caller observes true per MarkStale.
func (t *Tracker) TakeStale() bool {
	return t.stale.CompareAndSwap(true, false)
}
