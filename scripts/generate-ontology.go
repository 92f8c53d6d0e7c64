//go:build ignore

// Package main generates a synthetic ontology for benchmarking rebuilds and
// scans on large caches.
// Usage: go run scripts/generate-ontology.go -classes 20000 -output testdata/bench/large.yaml
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	numClasses = flag.Int("classes", 10000, "Number of classes to generate")
	outputPath = flag.String("output", "testdata/bench/large.yaml", "Output file")
	seed       = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var (
	bases     = []string{"Pizza", "Topping", "Base", "Sauce", "Cheese", "Vegetable", "Meat", "Spice"}
	qualities = []string{"Spicy", "Mild", "Thin", "Deep", "Smoked", "Fresh", "Aged", "Roasted"}
	origins   = []string{"Italian", "American", "Greek", "Sicilian", "Neapolitan", "Roman"}
)

type annotation struct {
	Property string `yaml:"property"`
	Value    string `yaml:"value"`
	Lang     string `yaml:"lang,omitempty"`
}

type entity struct {
	IRI         string       `yaml:"iri"`
	Kind        string       `yaml:"kind,omitempty"`
	Label       string       `yaml:"label,omitempty"`
	Annotations []annotation `yaml:"annotations,omitempty"`
}

type axiom struct {
	Subject string `yaml:"subject"`
	Text    string `yaml:"text"`
}

type document struct {
	IRI      string            `yaml:"iri"`
	Prefixes map[string]string `yaml:"prefixes"`
	Entities []entity          `yaml:"entities"`
	Axioms   []axiom           `yaml:"axioms"`
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	doc := document{
		IRI:      "http://example.org/bench",
		Prefixes: map[string]string{"b": "http://example.org/bench#"},
		Entities: []entity{
			{IRI: "b:hasPart", Kind: "object-property", Label: "has part"},
			{IRI: "b:origin", Kind: "data-property", Label: "origin"},
		},
	}

	names := make([]string, 0, *numClasses)
	for i := 0; i < *numClasses; i++ {
		quality := qualities[rng.Intn(len(qualities))]
		base := bases[rng.Intn(len(bases))]
		name := fmt.Sprintf("%s%s%d", quality, base, i)
		origin := origins[rng.Intn(len(origins))]
		names = append(names, name)

		doc.Entities = append(doc.Entities, entity{
			IRI:   "b:" + name,
			Label: fmt.Sprintf("%s %s %d", quality, base, i),
			Annotations: []annotation{
				{Property: "rdfs:comment", Value: fmt.Sprintf("A %s %s of %s origin", strings.ToLower(quality), strings.ToLower(base), origin), Lang: "en"},
			},
		})

		if i > 0 {
			parent := names[rng.Intn(i)]
			doc.Axioms = append(doc.Axioms, axiom{
				Subject: "b:" + name,
				Text:    fmt.Sprintf("%s SubClassOf hasPart some %s", name, parent),
			})
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding ontology: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(*outputPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing ontology: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d classes, %d axioms in %s\n", *numClasses, len(doc.Axioms), *outputPath)
}
