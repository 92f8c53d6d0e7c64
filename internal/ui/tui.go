package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/ontosearch/internal/search"
)

// Submitter runs queries in the background. *index.Coordinator implements it.
type Submitter interface {
	Submit(req search.Request, handler search.ResultHandler) (uint64, error)
}

// RefreshMsg re-submits the current query, e.g. after the ontology file was
// reloaded and the cache invalidated.
type RefreshMsg struct{}

// Message types for bubbletea
type (
	dispatchMsg       func()
	indexingMsg       bool // true when started, false when finished
	searchStartedMsg  struct{}
	searchProgressMsg struct{ percent, matches int }
	searchFinishedMsg struct{}
)

// NewDispatcher returns a search.Dispatcher that runs each call on the
// bubbletea event loop. send is usually (*tea.Program).Send.
func NewDispatcher(send func(tea.Msg)) search.Dispatcher {
	return func(fn func()) {
		send(dispatchMsg(fn))
	}
}

// programSink forwards engine progress to the event loop as messages.
type programSink struct {
	send func(tea.Msg)
}

// NewProgramSink returns a search.ProgressSink that forwards every event to
// send. send is usually (*tea.Program).Send.
func NewProgramSink(send func(tea.Msg)) search.ProgressSink {
	return programSink{send: send}
}

func (s programSink) IndexingStarted()  { s.send(indexingMsg(true)) }
func (s programSink) IndexingFinished() { s.send(indexingMsg(false)) }
func (s programSink) SearchStarted()    { s.send(searchStartedMsg{}) }
func (s programSink) SearchFinished()   { s.send(searchFinishedMsg{}) }

func (s programSink) SearchProgressed(percent, matches int) {
	s.send(searchProgressMsg{percent: percent, matches: matches})
}

// SearchModel is the interactive search screen. Every edit of the query
// submits a new search; results arrive through the Dispatcher built with
// NewDispatcher, so the handler runs inside Update.
type SearchModel struct {
	engine   Submitter
	template search.Request
	title    string
	styles   Styles

	input       textinput.Model
	spinner     spinner.Model
	progressBar progress.Model

	width  int
	height int

	// seq identifies the newest submission; results from older ones are
	// dropped even if they were already queued on the event loop.
	seq       uint64
	query     string
	indexing  bool
	searching bool
	percent   int
	matches   int
	results   []search.Result
	cursor    int
	err       error
	quitting  bool
}

// NewSearchModel creates the search screen. template carries the flags
// applied to every query (case, literal, limit); its Pattern is ignored.
func NewSearchModel(engine Submitter, template search.Request, cfg Config) *SearchModel {
	in := textinput.New()
	in.Placeholder = "regular expression"
	in.Prompt = "› "
	in.CharLimit = 256
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	p := progress.New(
		progress.WithSolidFill(ColorLime),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	template.Pattern = ""
	return &SearchModel{
		engine:      engine,
		template:    template,
		title:       cfg.Title,
		styles:      cfg.Styles(),
		input:       in,
		spinner:     s,
		progressBar: p,
		width:       80,
		height:      24,
	}
}

// Init implements tea.Model.
func (m *SearchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model.
func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != m.query {
			m.query = v
			m.submit()
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-6, 10)
		m.progressBar.Width = max(msg.Width-30, 20)

	case dispatchMsg:
		msg()

	case RefreshMsg:
		if strings.TrimSpace(m.query) != "" {
			m.submit()
		}

	case indexingMsg:
		m.indexing = bool(msg)

	case searchStartedMsg:
		m.searching = true
		m.percent, m.matches = 0, 0

	case searchProgressMsg:
		m.percent, m.matches = msg.percent, msg.matches

	case searchFinishedMsg:
		m.searching = false

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// submit sends the current query. A blank query clears the list without
// touching the engine.
func (m *SearchModel) submit() {
	m.seq++
	seq := m.seq
	m.err = nil

	if strings.TrimSpace(m.query) == "" {
		m.results, m.cursor = nil, 0
		return
	}

	req := m.template
	req.Pattern = m.query
	_, err := m.engine.Submit(req, func(results []search.Result) {
		if seq != m.seq {
			return
		}
		m.results = results
		m.cursor = 0
	})
	if err != nil {
		m.err = err
	}
}

// Results returns the result list currently shown.
func (m *SearchModel) Results() []search.Result {
	return m.results
}

// View implements tea.Model.
func (m *SearchModel) View() string {
	if m.quitting {
		return ""
	}

	contentWidth := max(m.width-4, 40)

	var sections []string
	sections = append(sections, m.input.View())
	sections = append(sections, m.renderDivider(contentWidth))
	sections = append(sections, m.renderStatus())
	if m.err != nil {
		sections = append(sections, m.styles.Error.Render("✗ "+firstLine(m.err.Error())))
	}
	sections = append(sections, m.renderDivider(contentWidth))
	sections = append(sections, m.renderResults(contentWidth))

	title := "Ontosearch"
	if m.title != "" {
		title = fmt.Sprintf("Ontosearch • %s", m.title)
	}

	panel := m.styles.Panel.Width(contentWidth).Render(strings.Join(sections, "\n"))
	hint := m.styles.Dim.Render("↑/↓ select  •  esc to quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(title),
		panel,
		hint,
	)
}

// renderStatus renders the indexing/search progress line.
func (m *SearchModel) renderStatus() string {
	switch {
	case m.indexing:
		return fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Label.Render("Building search index..."))
	case strings.TrimSpace(m.query) == "":
		return m.styles.Dim.Render("Type to search")
	case m.searching:
		bar := m.progressBar.ViewAs(float64(m.percent) / 100)
		pct := m.styles.Active.Render(fmt.Sprintf("%3d%%", m.percent))
		return fmt.Sprintf("%s  %s  %s", bar, pct, m.styles.Label.Render(search.MatchLabel(m.matches)))
	default:
		return m.styles.Success.Render(search.MatchLabel(len(m.results)))
	}
}

// renderResults renders as many results as fit, keeping the cursor visible.
func (m *SearchModel) renderResults(width int) string {
	if len(m.results) == 0 {
		return ""
	}

	// Each result takes two lines; leave room for header, input, status and hint.
	rows := max((m.height-10)/2, 1)
	first := 0
	if m.cursor >= rows {
		first = m.cursor - rows + 1
	}
	last := min(first+rows, len(m.results))

	radius := max((width-10)/3, 10)
	lines := make([]string, 0, 2*(last-first))
	for i := first; i < last; i++ {
		entry := FormatResult(m.results[i], m.styles, radius)
		marker := "  "
		if i == m.cursor {
			marker = m.styles.Selected.Render("▌ ")
		}
		for _, l := range strings.Split(entry, "\n") {
			lines = append(lines, marker+l)
		}
	}
	if rest := len(m.results) - last; rest > 0 {
		lines = append(lines, m.styles.Dim.Render(fmt.Sprintf("  … %d more", rest)))
	}
	return strings.Join(lines, "\n")
}

// renderDivider renders a horizontal divider line.
func (m *SearchModel) renderDivider(width int) string {
	return m.styles.Border.Render(strings.Repeat("─", width-2))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var _ tea.Model = (*SearchModel)(nil)
