// Package importer turns an ontology document into search metadata.
//
// Each Importer owns one category of records (display names, IRIs,
// annotation values, logical axioms). The Manager keeps importers in
// registration order; the index coordinator runs them in that order on
// every rebuild and concatenates their output.
package importer

import (
	"sync"

	"github.com/Aman-CERP/ontosearch/internal/metadata"
	"github.com/Aman-CERP/ontosearch/internal/ontology"
)

// Document is the read-only view of an ontology that importers need.
// *ontology.Document satisfies it.
type Document interface {
	Entities() []ontology.Entity
	Annotations(iri string) []ontology.Annotation
	Axioms() []ontology.Axiom
}

// Importer produces the records for one search category.
// Import must be deterministic for a given document snapshot.
type Importer interface {
	// Name identifies the importer in logs.
	Name() string
	// Handles reports whether the importer has work to do for types.
	Handles(types metadata.TypeSet) bool
	// Import produces records in a stable order.
	Import(doc Document, types metadata.TypeSet) ([]metadata.Record, error)
}

// Manager holds the ordered importer list.
type Manager struct {
	mu        sync.RWMutex
	importers []Importer
}

// NewManager creates a manager with the given importers, in order.
func NewManager(importers ...Importer) *Manager {
	return &Manager{importers: append([]Importer(nil), importers...)}
}

// DefaultManager registers the builtin importers using r to render entities.
func DefaultManager(r Renderer) *Manager {
	if r == nil {
		r = ShortFormRenderer{}
	}
	return NewManager(
		NewDisplayNameImporter(r),
		NewIRIImporter(r),
		NewAnnotationValueImporter(r),
		NewLogicalAxiomImporter(r),
	)
}

// Register appends an importer. It runs after all earlier registrations.
func (m *Manager) Register(imp Importer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.importers = append(m.importers, imp)
}

// Importers returns a snapshot of the importer list in registration order.
func (m *Manager) Importers() []Importer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Importer(nil), m.importers...)
}
