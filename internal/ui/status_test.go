package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatus() StatusInfo {
	return StatusInfo{
		Source:  "pizza.yaml",
		Records: 12,
		ByType: map[string]int{
			"iri":           4,
			"display-name":  4,
			"logical-axiom": 4,
		},
		EnabledTypes:     []string{"display-name", "iri", "logical-axiom"},
		Importers:        []string{"display-name", "iri", "logical-axiom"},
		ImporterFailures: 1,
		Rebuilds:         1,
		LastRebuild:      1500 * time.Microsecond,
		WatcherStatus:    "running",
	}
}

func TestStatusRenderer_Render(t *testing.T) {
	// Given: status renderer without color
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	// When: rendering
	require.NoError(t, r.Render(sampleStatus()))

	// Then: counts, failures and watcher state are shown
	out := buf.String()
	assert.Contains(t, out, "Index Status: pizza.yaml")
	assert.Contains(t, out, "Records:      12")
	assert.Contains(t, out, "Rebuilt in:   1ms")
	assert.Contains(t, out, "1 importer(s) failed")
	assert.Contains(t, out, "Watcher:   running")

	// And: types are listed alphabetically
	assert.Less(t, strings.Index(out, "display-name:"), strings.Index(out, "iri:"))
	assert.Less(t, strings.Index(out, "iri:"), strings.Index(out, "logical-axiom:"))
}

func TestStatusRenderer_HidesWatcherWhenNotApplicable(t *testing.T) {
	buf := &bytes.Buffer{}
	info := sampleStatus()
	info.WatcherStatus = "n/a"

	require.NoError(t, NewStatusRenderer(buf, true).Render(info))

	assert.NotContains(t, buf.String(), "Watcher")
}

func TestStatusRenderer_RenderJSON(t *testing.T) {
	// Given: status renderer
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	// When: rendering JSON
	require.NoError(t, r.RenderJSON(sampleStatus()))

	// Then: durations are reported in milliseconds
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "pizza.yaml", parsed["source"])
	assert.Equal(t, float64(12), parsed["records"])
	assert.Equal(t, float64(1), parsed["last_rebuild_ms"])
	assert.Equal(t, "running", parsed["watcher_status"])
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "-"},
		{250 * time.Microsecond, "250µs"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
		{125 * time.Second, "2m 5s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), "FormatDuration(%v)", tt.in)
	}
}
