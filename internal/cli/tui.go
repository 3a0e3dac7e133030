package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// reviewModel - Interactive artifact review
// =============================================================================

// reviewModel is the bubbletea model for reviewing failed comparisons.
type reviewModel struct {
	items  []pendingReview
	cursor int
	offset int
	height int

	accept func(pendingReview) error
	reject func(pendingReview) error

	promoted  int
	discarded int
	status    string
	err       error
}

func newReviewModel(items []pendingReview, accept, reject func(pendingReview) error) reviewModel {
	return reviewModel{
		items:  items,
		height: 15,
		accept: accept,
		reject: reject,
	}
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter", "p":
			m = m.apply(m.accept, "promoted")
		case "d":
			m = m.apply(m.reject, "discarded")
		}
		if m.cursor < m.offset {
			m.offset = m.cursor
		}
		if m.cursor >= m.offset+m.height {
			m.offset = m.cursor - m.height + 1
		}
		if len(m.items) == 0 {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

// apply runs action on the selected item and drops it from the list on
// success.
func (m reviewModel) apply(action func(pendingReview) error, verb string) reviewModel {
	if len(m.items) == 0 {
		return m
	}
	p := m.items[m.cursor]
	if err := action(p); err != nil {
		m.err = err
		m.status = ""
		return m
	}
	m.err = nil
	m.status = fmt.Sprintf("%s %s", verb, filepath.Base(p.Actual))
	if verb == "promoted" {
		m.promoted++
	} else {
		m.discarded++
	}

	items := make([]pendingReview, 0, len(m.items)-1)
	items = append(items, m.items[:m.cursor]...)
	m.items = append(items, m.items[m.cursor+1:]...)
	if m.cursor >= len(m.items) && m.cursor > 0 {
		m.cursor--
	}
	return m
}

func (m reviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Review Comparisons"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ promote  d discard  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.items))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		p := m.items[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, p.Actual, filepath.Base(p.Expected), reviewStatus(p)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Actual", "Expected", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.items) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if m.items[idx].Missing && col == 3 {
				base = base.Foreground(colorYellow)
			}
			if idx == m.cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("  " + m.err.Error()))
	case m.status != "":
		b.WriteString(StyleSuccess.Render("  " + m.status))
	default:
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.items))))
	}
	return b.String()
}

// reviewStatus describes an item in one short phrase.
func reviewStatus(p pendingReview) string {
	if p.Missing {
		return "new"
	}
	return fmt.Sprintf("distance %.0f", p.Distance)
}
