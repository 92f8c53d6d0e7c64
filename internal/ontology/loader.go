package ontology

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
)

// fileDocument is the YAML layout of an ontology file.
type fileDocument struct {
	IRI      string            `yaml:"iri"`
	Prefixes map[string]string `yaml:"prefixes"`
	Entities []fileEntity      `yaml:"entities"`
	Axioms   []fileAxiom       `yaml:"axioms"`
}

type fileEntity struct {
	IRI         string           `yaml:"iri"`
	Kind        string           `yaml:"kind"`
	Label       string           `yaml:"label"`
	Annotations []fileAnnotation `yaml:"annotations"`
}

type fileAnnotation struct {
	Property string `yaml:"property"`
	Value    string `yaml:"value"`
	Lang     string `yaml:"lang"`
}

type fileAxiom struct {
	Subject string `yaml:"subject"`
	Text    string `yaml:"text"`
}

// LoadFile reads an ontology from a YAML file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ontoerrors.IOError(fmt.Sprintf("ontology file not found: %s", path), err).
				WithSuggestion("Check the ontology file path")
		}
		return nil, ontoerrors.New(ontoerrors.ErrCodeFilePermission,
			fmt.Sprintf("cannot read ontology file %s", path), err)
	}

	doc, err := Parse(data)
	if err != nil {
		if oe, ok := err.(*ontoerrors.OntoError); ok {
			oe.WithDetail("path", path)
		}
		return nil, err
	}
	return doc, nil
}

// Parse builds a document from YAML.
//
// Entity IRIs and axiom subjects may use a prefix declared under "prefixes"
// (e.g. "pizza:Margherita"). An entity's "label" is shorthand for an
// rdfs:label annotation.
func Parse(data []byte) (*Document, error) {
	var fd fileDocument
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return nil, ontoerrors.New(ontoerrors.ErrCodeFileCorrupt, "failed to parse ontology YAML", err)
	}

	doc := NewDocument(fd.IRI)
	expand := func(s string) string { return expandPrefix(fd.Prefixes, s) }

	for i, fe := range fd.Entities {
		if fe.IRI == "" {
			return nil, ontoerrors.New(ontoerrors.ErrCodeFileCorrupt,
				fmt.Sprintf("entity #%d has no iri", i+1), nil)
		}
		iri := expand(fe.IRI)
		kind := fe.Kind
		if kind == "" {
			kind = KindClass
		}
		doc.entities[iri] = Entity{IRI: iri, Kind: kind}

		if fe.Label != "" {
			doc.annotations[iri] = append(doc.annotations[iri],
				Annotation{Subject: iri, Property: LabelProperty, Value: fe.Label})
		}
		for _, fa := range fe.Annotations {
			prop := fa.Property
			if prop == "" {
				prop = LabelProperty
			}
			doc.annotations[iri] = append(doc.annotations[iri],
				Annotation{Subject: iri, Property: prop, Value: fa.Value, Lang: fa.Lang})
		}
	}

	for i, fa := range fd.Axioms {
		if fa.Text == "" {
			return nil, ontoerrors.New(ontoerrors.ErrCodeFileCorrupt,
				fmt.Sprintf("axiom #%d has no text", i+1), nil)
		}
		doc.axioms = append(doc.axioms, Axiom{Subject: expand(fa.Subject), Text: fa.Text})
	}

	return doc, nil
}

// Reload re-reads path into d and fires a single ChangeReloaded.
// On error d is left untouched.
func (d *Document) Reload(path string) error {
	fresh, err := LoadFile(path)
	if err != nil {
		return err
	}
	d.replace(fresh)
	return nil
}

// expandPrefix turns "pfx:Local" into the full IRI when pfx is declared.
func expandPrefix(prefixes map[string]string, s string) string {
	if len(prefixes) == 0 {
		return s
	}
	pfx, local, ok := strings.Cut(s, ":")
	if !ok || strings.HasPrefix(local, "//") {
		return s
	}
	if base, found := prefixes[pfx]; found {
		return base + local
	}
	return s
}
