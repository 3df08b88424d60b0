package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/sokinpui/sidediff/internal/model"
	"github.com/sokinpui/sidediff/internal/render"
)

// --- Styles ---
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	addStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	modifyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))           // Orange
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// chrome is the number of lines taken by the title and footer.
const chrome = 2

// --- Model ---
type Model struct {
	title    string
	lines    []render.Line
	viewport viewport.Model
	ready    bool
}

// New returns a pager showing lines under title.
func New(title string, lines []render.Line) Model {
	return Model{title: title, lines: lines}
}

// Run shows the pager until the user quits.
func Run(title string, lines []render.Line) error {
	p := tea.NewProgram(New(title, lines), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running pager: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "g", "home":
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		height := msg.Height - chrome
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(colorize(m.lines))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.headerView(), m.viewport.View(), m.footerView())
}

func (m Model) headerView() string {
	title := runewidth.Truncate(m.title, max(m.viewport.Width, 1), "…")
	return headerStyle.Render(title)
}

func (m Model) footerView() string {
	info := fmt.Sprintf("%d lines  %3.f%%  q: quit", len(m.lines), m.viewport.ScrollPercent()*100)
	return faintStyle.Render(info)
}

// colorize styles the mode column of every row.
func colorize(lines []render.Line) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(colorizeRow(line))
	}
	return b.String()
}

const tagLen = len("|M|")

func colorizeRow(line render.Line) string {
	if line.TagAt < 0 || line.TagAt+tagLen > len(line.Text) {
		return line.Text
	}

	var style lipgloss.Style
	switch line.Mode {
	case model.Add:
		style = addStyle
	case model.Delete:
		style = deleteStyle
	case model.Modify:
		style = modifyStyle
	default:
		return line.Text
	}
	start, end := line.TagAt, line.TagAt+tagLen
	return line.Text[:start] + style.Render(line.Text[start:end]) + line.Text[end:]
}
