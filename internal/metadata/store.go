package metadata

// Store is the ordered sequence of records that queries scan.
// Insertion order is importer iteration order.
//
// Store is not safe for concurrent use. The index coordinator confines it to
// its single worker, so rebuilds and scans never overlap.
type Store struct {
	records []Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// At returns the i-th record.
func (s *Store) At(i int) Record {
	return s.records[i]
}

// Records returns a copy of the store's records.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Reset empties the store, keeping capacity for the next rebuild.
func (s *Store) Reset() {
	clear(s.records)
	s.records = s.records[:0]
}

// Append adds records to the end of the store.
func (s *Store) Append(records ...Record) {
	s.records = append(s.records, records...)
}

// Replace swaps the store's contents for records.
func (s *Store) Replace(records []Record) {
	s.Reset()
	s.Append(records...)
}

// CountByType returns the number of records per search type.
func (s *Store) CountByType() map[SearchType]int {
	counts := make(map[SearchType]int)
	for _, r := range s.records {
		counts[r.typ]++
	}
	return counts
}
