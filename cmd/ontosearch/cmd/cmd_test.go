package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const pizzaYAML = `
iri: http://example.org/pizza
prefixes:
  pizza: http://example.org/pizza#
entities:
  - iri: pizza:Margherita
    label: Margherita
    annotations:
      - property: rdfs:comment
        value: A pizza with tomato and mozzarella
        lang: en
  - iri: pizza:hasTopping
    kind: object-property
axioms:
  - subject: pizza:Margherita
    text: Margherita SubClassOf hasTopping some MozzarellaTopping
`

// setupHome isolates config and log files in a temp directory and writes
// the pizza ontology there. Returns the ontology path.
func setupHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")

	path := filepath.Join(home, "pizza.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pizzaYAML), 0o644))
	return path
}

// runCLI executes the root command with args and captures both streams.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCmd()
	outBuf, errBuf := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}
