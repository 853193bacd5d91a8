// Package browse is an interactive failure browser: a table of failures with
// a live substring filter and a detail pane for the selected row.
package browse

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/faildiff/pkg/failure"
	"github.com/dkoosis/faildiff/pkg/mapper"
)

// Layout constants.
const (
	minTableHeight = 5
	detailHeight   = 10
	chromeHeight   = 6 // title, filter line, status bar, borders
)

var columns = []table.Column{
	{Title: "Status", Width: 8},
	{Title: "Module", Width: 18},
	{Title: "Class", Width: 40},
	{Title: "Test", Width: 30},
	{Title: "Archive", Width: 16},
}

type styles struct {
	title  lipgloss.Style
	detail lipgloss.Style
	label  lipgloss.Style
	status lipgloss.Style
	muted  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("242")).Padding(0, 1),
		label:  lipgloss.NewStyle().Bold(true),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
}

// Model is the bubbletea model for the browser.
type Model struct {
	title     string
	all       []failure.Record
	haystacks []string // lower-cased searchable text per record
	visible   []int    // indexes into all, in display order

	table    table.Model
	filter   textinput.Model
	detail   viewport.Model
	styles   styles
	width    int
	height   int
	quitting bool
}

// New builds a browser over records, shown in the order given.
func New(title string, records []failure.Record) Model {
	ti := textinput.New()
	ti.Placeholder = "filter by any column"
	ti.Prompt = "/ "
	ti.CharLimit = 200

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(minTableHeight),
	)

	m := Model{
		title:     title,
		all:       records,
		haystacks: make([]string, len(records)),
		table:     t,
		filter:    ti,
		detail:    viewport.New(80, detailHeight),
		styles:    defaultStyles(),
	}
	for i, r := range records {
		m.haystacks[i] = strings.ToLower(strings.Join(r.Row(), " "))
	}
	m.applyFilter()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "/":
			return m, m.filter.Focus()
		case "esc":
			if m.filter.Value() != "" {
				m.filter.SetValue("")
				m.applyFilter()
			}
			return m, nil
		case "pgdown", "J":
			m.detail.ScrollDown(1)
			return m, nil
		case "pgup", "K":
			m.detail.ScrollUp(1)
			return m, nil
		}
	}

	before := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != before {
		m.refreshDetail()
	}
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		m.filter.Blur()
		return m, nil
	case "esc":
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	}
	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.applyFilter()
	}
	return m, cmd
}

// applyFilter recomputes visible rows from the filter text and resets the
// cursor to the first match.
func (m *Model) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = make([]int, 0, len(m.all))
	rows := make([]table.Row, 0, len(m.all))
	for i, r := range m.all {
		if needle != "" && !strings.Contains(m.haystacks[i], needle) {
			continue
		}
		m.visible = append(m.visible, i)
		rows = append(rows, table.Row{string(r.Status), r.ModuleName, r.ClassName, r.TestName, r.Origin})
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
	m.refreshDetail()
}

// Selected returns the record under the cursor.
func (m Model) Selected() (failure.Record, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return failure.Record{}, false
	}
	return m.all[m.visible[c]], true
}

// Visible returns how many records pass the filter.
func (m Model) Visible() int {
	return len(m.visible)
}

func (m *Model) refreshDetail() {
	r, ok := m.Selected()
	if !ok {
		m.detail.SetContent(m.styles.muted.Render("No matching failures."))
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", m.styles.status.Render(strings.ToUpper(string(r.Status))), r.Key())
	fmt.Fprintf(&sb, "%s %s   %s %s   %s %s\n",
		m.styles.label.Render("Module:"), r.ModuleName,
		m.styles.label.Render("Source:"), r.SourceFile,
		m.styles.label.Render("Duration:"), mapper.FormatSeconds(r.Duration))
	if r.Message != "" {
		sb.WriteString("\n" + r.Message + "\n")
	}
	if r.StackTrace != "" {
		sb.WriteString("\n" + m.styles.muted.Render(r.StackTrace) + "\n")
	}
	m.detail.SetContent(sb.String())
	m.detail.GotoTop()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.table.SetWidth(width)
	m.table.SetHeight(max(height-detailHeight-chromeHeight, minTableHeight))
	m.detail.Width = max(width-4, 20)
	m.detail.Height = detailHeight - 2
	m.filter.Width = max(width-4, 10)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	header := m.styles.title.Render(fmt.Sprintf("%s  %d/%d failures", m.title, len(m.visible), len(m.all)))
	filterLine := m.filter.View()
	if !m.filter.Focused() && m.filter.Value() == "" {
		filterLine = m.styles.muted.Render("/ filter  esc clear  ↑/↓ select  J/K scroll detail  q quit")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		filterLine,
		m.table.View(),
		m.styles.detail.Render(m.detail.View()),
	)
}

// Run starts the browser on the given terminal streams and blocks until the
// user quits.
func Run(ctx context.Context, title string, records []failure.Record, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(title, records),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
