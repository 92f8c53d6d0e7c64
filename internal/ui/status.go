package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// StatusInfo describes the metadata cache after a rebuild.
type StatusInfo struct {
	Source           string         `json:"source"`
	Records          int            `json:"records"`
	ByType           map[string]int `json:"by_type"`
	EnabledTypes     []string       `json:"enabled_types"`
	Importers        []string       `json:"importers"`
	ImporterFailures int            `json:"importer_failures"`
	Rebuilds         int            `json:"rebuilds"`
	LastRebuild      time.Duration  `json:"-"`
	LastRebuildMS    int64          `json:"last_rebuild_ms"`
	WatcherStatus    string         `json:"watcher_status,omitempty"` // "running", "stopped", "n/a"
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Index Status: "+info.Source))

	_, _ = fmt.Fprintf(r.out, "  Records:      %d\n", info.Records)
	_, _ = fmt.Fprintf(r.out, "  Rebuilt in:   %s\n", FormatDuration(info.LastRebuild))
	if info.ImporterFailures > 0 {
		_, _ = fmt.Fprintf(r.out, "  Failures:     %s\n",
			r.styles.Warning.Render(fmt.Sprintf("%d importer(s) failed", info.ImporterFailures)))
	}
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  By type:")
	types := make([]string, 0, len(info.ByType))
	for t := range info.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		_, _ = fmt.Fprintf(r.out, "    %-18s %d\n", t+":", info.ByType[t])
	}
	_, _ = fmt.Fprintln(r.out)

	if len(info.Importers) > 0 {
		_, _ = fmt.Fprintf(r.out, "  Importers: %s\n", r.styles.Label.Render(joinComma(info.Importers)))
	}
	if len(info.EnabledTypes) > 0 {
		_, _ = fmt.Fprintf(r.out, "  Enabled:   %s\n", r.styles.Label.Render(joinComma(info.EnabledTypes)))
	}

	if info.WatcherStatus != "" && info.WatcherStatus != "n/a" {
		_, _ = fmt.Fprintf(r.out, "  Watcher:   %s\n", r.renderStatus(info.WatcherStatus))
	}

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	info.LastRebuildMS = info.LastRebuild.Milliseconds()
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "ready", "running":
		return r.styles.Success.Render(status)
	case "stopped":
		return r.styles.Warning.Render(status)
	case "error":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// FormatDuration formats a rebuild or scan duration for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
