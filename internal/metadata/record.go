package metadata

// EntityRef identifies the ontology entity a record was derived from.
type EntityRef struct {
	// Kind is the entity kind (class, object-property, individual, ...).
	Kind string
	// IRI is the entity's full IRI.
	IRI string
}

// Record is one searchable item. Records are immutable once built.
type Record struct {
	typ       SearchType
	group     string
	entity    EntityRef
	rendering string
	text      string
}

// NewRecord creates a record.
//   - group is the human label of the category ("Display name", "IRI", ...)
//   - rendering is how the source entity should be displayed
//   - text is the string queries are matched against
func NewRecord(typ SearchType, group string, entity EntityRef, rendering, text string) Record {
	return Record{
		typ:       typ,
		group:     group,
		entity:    entity,
		rendering: rendering,
		text:      text,
	}
}

// Type returns the search type the record was produced for.
func (r Record) Type() SearchType { return r.typ }

// Group returns the human label of the record's category.
func (r Record) Group() string { return r.group }

// Entity returns the source entity reference.
func (r Record) Entity() EntityRef { return r.entity }

// Rendering returns the display rendering of the source entity.
func (r Record) Rendering() string { return r.rendering }

// Text returns the searchable text.
func (r Record) Text() string { return r.text }
