// Package ontology provides an in-memory ontology document: entities, their
// annotations, and logical axioms, with change notification.
//
// It is a small stand-in for a full ontology model. The search engine only
// sees it through the importer.Document view and the Notifier interface.
package ontology

import (
	"sort"
	"sync"
)

// Common entity kinds.
const (
	KindClass              = "class"
	KindObjectProperty     = "object-property"
	KindDataProperty       = "data-property"
	KindAnnotationProperty = "annotation-property"
	KindIndividual         = "individual"
	KindDatatype           = "datatype"
)

// LabelProperty is the annotation property used for display names.
const LabelProperty = "rdfs:label"

// Entity is a named ontology entity.
type Entity struct {
	IRI  string
	Kind string
}

// Annotation is a literal annotation on an entity.
type Annotation struct {
	Subject  string
	Property string
	Value    string
	Lang     string
}

// Axiom is a logical axiom rendered as text, attributed to its subject.
type Axiom struct {
	Subject string
	Text    string
}

// ChangeKind describes a document mutation.
type ChangeKind int

const (
	// ChangeEntityAdded fires when an entity is declared.
	ChangeEntityAdded ChangeKind = iota
	// ChangeEntityRemoved fires when an entity and everything about it is removed.
	ChangeEntityRemoved
	// ChangeAnnotationAdded fires when an annotation is asserted.
	ChangeAnnotationAdded
	// ChangeAxiomAdded fires when an axiom is asserted.
	ChangeAxiomAdded
	// ChangeReloaded fires when the whole document is replaced.
	ChangeReloaded
)

// String returns a human-readable representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeEntityAdded:
		return "ENTITY_ADDED"
	case ChangeEntityRemoved:
		return "ENTITY_REMOVED"
	case ChangeAnnotationAdded:
		return "ANNOTATION_ADDED"
	case ChangeAxiomAdded:
		return "AXIOM_ADDED"
	case ChangeReloaded:
		return "RELOADED"
	default:
		return "UNKNOWN"
	}
}

// Change is delivered to listeners after a mutation is applied.
type Change struct {
	Kind ChangeKind
	// IRI is the affected entity. Empty for ChangeReloaded.
	IRI string
}

// Notifier delivers document changes to listeners.
type Notifier interface {
	// OnChange registers fn and returns a function that unregisters it.
	OnChange(fn func(Change)) (unsubscribe func())
}

// Document is a thread-safe in-memory ontology.
type Document struct {
	mu          sync.RWMutex
	iri         string
	entities    map[string]Entity
	annotations map[string][]Annotation
	axioms      []Axiom

	listenerMu sync.Mutex
	listeners  map[int]func(Change)
	nextID     int
}

var _ Notifier = (*Document)(nil)

// NewDocument creates an empty document with the given ontology IRI.
func NewDocument(iri string) *Document {
	return &Document{
		iri:         iri,
		entities:    make(map[string]Entity),
		annotations: make(map[string][]Annotation),
		listeners:   make(map[int]func(Change)),
	}
}

// IRI returns the ontology IRI.
func (d *Document) IRI() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.iri
}

// AddEntity declares an entity. Redeclaring an existing IRI updates its kind.
func (d *Document) AddEntity(e Entity) {
	d.mu.Lock()
	d.entities[e.IRI] = e
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeEntityAdded, IRI: e.IRI})
}

// RemoveEntity removes an entity with its annotations and axioms.
// Returns false if the entity was not declared.
func (d *Document) RemoveEntity(iri string) bool {
	d.mu.Lock()
	if _, ok := d.entities[iri]; !ok {
		d.mu.Unlock()
		return false
	}
	delete(d.entities, iri)
	delete(d.annotations, iri)
	kept := d.axioms[:0]
	for _, ax := range d.axioms {
		if ax.Subject != iri {
			kept = append(kept, ax)
		}
	}
	d.axioms = kept
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeEntityRemoved, IRI: iri})
	return true
}

// Annotate asserts an annotation. The subject is declared as a class if unknown.
func (d *Document) Annotate(a Annotation) {
	d.mu.Lock()
	if _, ok := d.entities[a.Subject]; !ok {
		d.entities[a.Subject] = Entity{IRI: a.Subject, Kind: KindClass}
	}
	d.annotations[a.Subject] = append(d.annotations[a.Subject], a)
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeAnnotationAdded, IRI: a.Subject})
}

// AddAxiom asserts a logical axiom.
func (d *Document) AddAxiom(ax Axiom) {
	d.mu.Lock()
	d.axioms = append(d.axioms, ax)
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeAxiomAdded, IRI: ax.Subject})
}

// Entities returns all declared entities sorted by IRI.
func (d *Document) Entities() []Entity {
	d.mu.RLock()
	out := make([]Entity, 0, len(d.entities))
	for _, e := range d.entities {
		out = append(out, e)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].IRI < out[j].IRI })
	return out
}

// Entity looks up a declared entity.
func (d *Document) Entity(iri string) (Entity, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entities[iri]
	return e, ok
}

// Annotations returns the annotations on iri in assertion order.
func (d *Document) Annotations(iri string) []Annotation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	src := d.annotations[iri]
	out := make([]Annotation, len(src))
	copy(out, src)
	return out
}

// Axioms returns all axioms in assertion order.
func (d *Document) Axioms() []Axiom {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Axiom, len(d.axioms))
	copy(out, d.axioms)
	return out
}

// replace swaps the document contents for other's and fires ChangeReloaded.
func (d *Document) replace(other *Document) {
	other.mu.RLock()
	iri := other.iri
	entities := make(map[string]Entity, len(other.entities))
	for k, v := range other.entities {
		entities[k] = v
	}
	annotations := make(map[string][]Annotation, len(other.annotations))
	for k, v := range other.annotations {
		annotations[k] = append([]Annotation(nil), v...)
	}
	axioms := append([]Axiom(nil), other.axioms...)
	other.mu.RUnlock()

	d.mu.Lock()
	d.iri = iri
	d.entities = entities
	d.annotations = annotations
	d.axioms = axioms
	d.mu.Unlock()

	d.notify(Change{Kind: ChangeReloaded})
}

// OnChange implements Notifier.
func (d *Document) OnChange(fn func(Change)) func() {
	d.listenerMu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.listenerMu.Unlock()

	return func() {
		d.listenerMu.Lock()
		delete(d.listeners, id)
		d.listenerMu.Unlock()
	}
}

// notify calls listeners outside the document lock.
func (d *Document) notify(c Change) {
	d.listenerMu.Lock()
	fns := make([]func(Change), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.listenerMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
