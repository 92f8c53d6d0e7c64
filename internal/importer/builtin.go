package importer

import (
	"github.com/Aman-CERP/ontosearch/internal/metadata"
	"github.com/Aman-CERP/ontosearch/internal/ontology"
)

// Group labels shown alongside results.
const (
	GroupDisplayName     = "Display name"
	GroupIRI             = "IRI"
	GroupAnnotationValue = "Annotation value"
	GroupLogicalAxiom    = "Logical axiom"
)

// entityImporter is the shared shape of importers that emit records per entity.
type entityImporter struct {
	name     string
	typ      metadata.SearchType
	renderer Renderer
	generate func(doc Document, e ontology.Entity, rendering string) []metadata.Record
}

func (i *entityImporter) Name() string { return i.name }

func (i *entityImporter) Handles(types metadata.TypeSet) bool {
	return types.Contains(i.typ)
}

func (i *entityImporter) Import(doc Document, _ metadata.TypeSet) ([]metadata.Record, error) {
	var out []metadata.Record
	for _, e := range doc.Entities() {
		out = append(out, i.generate(doc, e, i.renderer.Render(doc, e))...)
	}
	return out, nil
}

func ref(e ontology.Entity) metadata.EntityRef {
	return metadata.EntityRef{Kind: e.Kind, IRI: e.IRI}
}

// NewDisplayNameImporter emits one record per entity matching its rendering.
func NewDisplayNameImporter(r Renderer) Importer {
	return &entityImporter{
		name:     "display-name",
		typ:      metadata.TypeDisplayName,
		renderer: r,
		generate: func(_ Document, e ontology.Entity, rendering string) []metadata.Record {
			return []metadata.Record{
				metadata.NewRecord(metadata.TypeDisplayName, GroupDisplayName, ref(e), rendering, rendering),
			}
		},
	}
}

// NewIRIImporter emits one record per entity matching its full IRI.
func NewIRIImporter(r Renderer) Importer {
	return &entityImporter{
		name:     "iri",
		typ:      metadata.TypeIRI,
		renderer: r,
		generate: func(_ Document, e ontology.Entity, rendering string) []metadata.Record {
			return []metadata.Record{
				metadata.NewRecord(metadata.TypeIRI, GroupIRI, ref(e), rendering, e.IRI),
			}
		},
	}
}

// NewAnnotationValueImporter emits one record per non-empty annotation value.
func NewAnnotationValueImporter(r Renderer) Importer {
	return &entityImporter{
		name:     "annotation-value",
		typ:      metadata.TypeAnnotationValue,
		renderer: r,
		generate: func(doc Document, e ontology.Entity, rendering string) []metadata.Record {
			var out []metadata.Record
			for _, a := range doc.Annotations(e.IRI) {
				if a.Value == "" {
					continue
				}
				out = append(out, metadata.NewRecord(
					metadata.TypeAnnotationValue, GroupAnnotationValue, ref(e), rendering, a.Value))
			}
			return out
		},
	}
}

// logicalAxiomImporter attributes each axiom to its subject entity.
type logicalAxiomImporter struct {
	renderer Renderer
}

// NewLogicalAxiomImporter emits one record per axiom, in assertion order.
func NewLogicalAxiomImporter(r Renderer) Importer {
	return &logicalAxiomImporter{renderer: r}
}

func (i *logicalAxiomImporter) Name() string { return "logical-axiom" }

func (i *logicalAxiomImporter) Handles(types metadata.TypeSet) bool {
	return types.Contains(metadata.TypeLogicalAxiom)
}

func (i *logicalAxiomImporter) Import(doc Document, _ metadata.TypeSet) ([]metadata.Record, error) {
	entities := make(map[string]ontology.Entity)
	for _, e := range doc.Entities() {
		entities[e.IRI] = e
	}

	axioms := doc.Axioms()
	out := make([]metadata.Record, 0, len(axioms))
	for _, ax := range axioms {
		e, ok := entities[ax.Subject]
		if !ok {
			// Axioms about undeclared subjects still get a usable reference.
			e = ontology.Entity{IRI: ax.Subject}
		}
		out = append(out, metadata.NewRecord(
			metadata.TypeLogicalAxiom, GroupLogicalAxiom, ref(e), i.renderer.Render(doc, e), ax.Text))
	}
	return out, nil
}
