package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Aman-CERP/ontosearch/internal/search"
)

// DefaultSnippetRadius is the number of runes kept on each side of a match.
const DefaultSnippetRadius = 40

const ellipsis = "…"

// ResultJSON is the machine-readable form of one result.
type ResultJSON struct {
	Type       string `json:"type"`
	Group      string `json:"group"`
	EntityKind string `json:"entity_kind"`
	EntityIRI  string `json:"entity_iri"`
	Rendering  string `json:"rendering"`
	Text       string `json:"text"`
	Matched    string `json:"matched"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
}

// ToJSON converts a result to its JSON form.
func ToJSON(r search.Result) ResultJSON {
	e := r.Record.Entity()
	return ResultJSON{
		Type:       string(r.Record.Type()),
		Group:      r.Record.Group(),
		EntityKind: e.Kind,
		EntityIRI:  e.IRI,
		Rendering:  r.Record.Rendering(),
		Text:       r.Record.Text(),
		Matched:    r.Matched(),
		Start:      r.Start,
		End:        r.End,
	}
}

// ResultPrinter writes result lists for the one-shot search command.
type ResultPrinter struct {
	out    io.Writer
	styles Styles
	radius int
}

// NewResultPrinter creates a printer writing to cfg.Output.
func NewResultPrinter(cfg Config) *ResultPrinter {
	return &ResultPrinter{
		out:    cfg.Output,
		styles: cfg.Styles(),
		radius: DefaultSnippetRadius,
	}
}

// Print writes each result followed by a count line.
func (p *ResultPrinter) Print(results []search.Result) {
	for _, r := range results {
		_, _ = fmt.Fprintln(p.out, FormatResult(r, p.styles, p.radius))
	}
	_, _ = fmt.Fprintln(p.out, p.styles.Label.Render(search.MatchLabel(len(results))))
}

// PrintJSON writes results as an indented JSON array.
func (p *ResultPrinter) PrintJSON(results []search.Result) error {
	out := make([]ResultJSON, len(results))
	for i, r := range results {
		out[i] = ToJSON(r)
	}

	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// FormatResult renders a result as two lines: the group and entity, then the
// matched text with the match highlighted.
func FormatResult(r search.Result, styles Styles, radius int) string {
	before, match, after := Snippet(r, radius)

	var b strings.Builder
	b.WriteString(styles.Group.Render(fmt.Sprintf("%-18s", r.Record.Group())))
	b.WriteByte(' ')
	b.WriteString(styles.Entity.Render(r.Record.Rendering()))
	b.WriteString("\n    ")
	b.WriteString(before)
	b.WriteString(styles.Match.Render(match))
	b.WriteString(after)
	return b.String()
}

// Snippet splits the record text around the match, trimming each side to
// radius runes. Newlines are folded to spaces. radius <= 0 keeps everything.
func Snippet(r search.Result, radius int) (before, match, after string) {
	before = flatten(r.Before())
	match = flatten(r.Matched())
	after = flatten(r.After())

	if radius <= 0 {
		return before, match, after
	}
	if rs := []rune(before); len(rs) > radius {
		before = ellipsis + string(rs[len(rs)-radius:])
	}
	if rs := []rune(after); len(rs) > radius {
		after = string(rs[:radius]) + ellipsis
	}
	return before, match, after
}

func flatten(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(s)
}
