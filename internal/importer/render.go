package importer

import (
	"strings"

	"github.com/Aman-CERP/ontosearch/internal/ontology"
)

// Renderer turns an entity into its display string.
type Renderer interface {
	Render(doc Document, e ontology.Entity) string
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(doc Document, e ontology.Entity) string

// Render implements Renderer.
func (f RendererFunc) Render(doc Document, e ontology.Entity) string {
	return f(doc, e)
}

// ShortFormRenderer renders an entity by its rdfs:label, falling back to the
// IRI fragment or last path segment.
type ShortFormRenderer struct {
	// Lang prefers labels in this language when set.
	Lang string
}

// Render implements Renderer.
func (r ShortFormRenderer) Render(doc Document, e ontology.Entity) string {
	var fallback string
	for _, a := range doc.Annotations(e.IRI) {
		if a.Property != ontology.LabelProperty || a.Value == "" {
			continue
		}
		if r.Lang == "" || a.Lang == r.Lang {
			return a.Value
		}
		if fallback == "" {
			fallback = a.Value
		}
	}
	if fallback != "" {
		return fallback
	}
	return ShortForm(e.IRI)
}

// ShortForm returns the IRI fragment after '#', else the segment after the
// last '/', else the IRI itself.
func ShortForm(iri string) string {
	if i := strings.LastIndexByte(iri, '#'); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	trimmed := strings.TrimRight(iri, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 && i < len(trimmed)-1 {
		return trimmed[i+1:]
	}
	return iri
}
