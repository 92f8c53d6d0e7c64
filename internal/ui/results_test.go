package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ontosearch/internal/search"
)

func TestSnippet_TrimsBothSides(t *testing.T) {
	// Given: a match surrounded by long text
	text := strings.Repeat("a", 50) + "XYZ" + strings.Repeat("b", 50)
	r := result("Display name", "Long", text, 50, 53)

	// When: taking a snippet with radius 5
	before, match, after := Snippet(r, 5)

	// Then: each side keeps 5 runes plus an ellipsis
	assert.Equal(t, "…aaaaa", before)
	assert.Equal(t, "XYZ", match)
	assert.Equal(t, "bbbbb…", after)
}

func TestSnippet_RuneSafe(t *testing.T) {
	// Given: multibyte text before the match
	text := "ÉÉÉÉ pizza"
	start := strings.Index(text, "pizza")
	r := result("Display name", "Pizza", text, start, start+5)

	// When: trimming to 2 runes
	before, match, _ := Snippet(r, 2)

	// Then: no rune is split
	assert.Equal(t, "…É ", before)
	assert.Equal(t, "pizza", match)
}

func TestSnippet_FoldsNewlines(t *testing.T) {
	r := result("Annotation", "Pizza", "line one\nline two", 5, 8)

	before, match, after := Snippet(r, 0)

	assert.Equal(t, "line ", before)
	assert.Equal(t, "one", match)
	assert.Equal(t, " line two", after)
}

func TestFormatResult(t *testing.T) {
	// Given: a display-name match
	r := result("Display name", "Margherita", "Margherita", 3, 6)

	// When: formatting without color
	got := FormatResult(r, NoColorStyles(), DefaultSnippetRadius)

	// Then: group, entity and text are on two lines
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Display name "))
	assert.True(t, strings.HasSuffix(lines[0], "Margherita"))
	assert.Equal(t, "    Margherita", lines[1])
}

func TestResultPrinter_Print(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewResultPrinter(NewConfig(buf, WithNoColor(true)))

	p.Print([]search.Result{
		result("Display name", "Margherita", "Margherita", 0, 3),
		result("Display name", "Marinara", "Marinara", 0, 3),
	})

	out := buf.String()
	assert.Contains(t, out, "Margherita")
	assert.Contains(t, out, "Marinara")
	assert.True(t, strings.HasSuffix(out, "2 results\n"))
}

func TestResultPrinter_PrintJSON(t *testing.T) {
	// Given: one result
	buf := &bytes.Buffer{}
	p := NewResultPrinter(NewConfig(buf, WithNoColor(true)))

	// When: printing JSON
	err := p.PrintJSON([]search.Result{result("Display name", "Margherita", "Margherita", 3, 6)})
	require.NoError(t, err)

	// Then: fields are present with byte offsets
	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "display-name", parsed[0]["type"])
	assert.Equal(t, "ghe", parsed[0]["matched"])
	assert.Equal(t, float64(3), parsed[0]["start"])
	assert.Equal(t, float64(6), parsed[0]["end"])
	assert.Equal(t, "http://example.org/pizza#Margherita", parsed[0]["entity_iri"])
}

func TestResultPrinter_PrintJSONEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewResultPrinter(NewConfig(buf))

	require.NoError(t, p.PrintJSON(nil))

	assert.Equal(t, "[]\n", buf.String())
}
