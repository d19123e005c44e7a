package ui

import (
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dxbchain/dxbforge/internal/history"
)

// historyTickInterval is how often the watch view re-fetches the token list.
const historyTickInterval = 10 * time.Second

type historyTickMsg time.Time

type refreshedMsg struct {
	err error
}

// historyModel is the bubbletea model for the live token history view.
// Typing filters by name, symbol, or address; the list re-fetches on a timer.
type historyModel struct {
	agg      *history.Aggregator
	title    string
	explorer string // explorer base URL for the open action

	query   string
	cursor  int
	lastErr error
	tokens  []history.Token
}

func (m historyModel) Init() tea.Cmd {
	return tea.Batch(refreshCmd(m.agg), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(historyTickInterval, func(t time.Time) tea.Msg {
		return historyTickMsg(t)
	})
}

func refreshCmd(agg *history.Aggregator) tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: agg.Refresh()}
	}
}

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyTickMsg:
		return m, tea.Batch(refreshCmd(m.agg), tickCmd())

	case refreshedMsg:
		m.lastErr = msg.err
		m.tokens = m.agg.Filter(m.query)
		if m.cursor >= len(m.tokens) {
			m.cursor = max(0, len(m.tokens)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down":
			if m.cursor < len(m.tokens)-1 {
				m.cursor++
			}

		case "backspace":
			if len(m.query) > 0 {
				m.query = m.query[:len(m.query)-1]
				m.tokens = m.agg.Filter(m.query)
				m.cursor = 0
			}

		case "ctrl+r":
			return m, refreshCmd(m.agg)

		case "ctrl+o":
			if m.cursor < len(m.tokens) && m.explorer != "" {
				openBrowser(m.explorer + "/address/" + m.tokens[m.cursor].Address)
			}

		default:
			// Printable characters extend the filter query.
			if len(msg.String()) == 1 {
				m.query += msg.String()
				m.tokens = m.agg.Filter(m.query)
				m.cursor = 0
			}
		}
	}
	return m, nil
}

func (m historyModel) View() string {
	var sb strings.Builder

	sb.WriteString(StyleTitle.Render(m.title))
	sb.WriteString("\n")

	if m.query != "" {
		sb.WriteString(StyleMeta.Render("filter: ") + StyleValue.Render(m.query))
	} else {
		sb.WriteString(StyleMeta.Render("type to filter"))
	}
	sb.WriteString("\n\n")

	if m.lastErr != nil {
		sb.WriteString(Err("refresh failed: "+m.lastErr.Error()) + "\n\n")
	}

	if len(m.tokens) == 0 {
		sb.WriteString(StyleDim.Render("  no tokens deployed yet") + "\n")
	} else {
		table := NewTable([]Column{
			{Title: "NAME", Width: 24},
			{Title: "SYMBOL", Width: 8},
			{Title: "SUPPLY", Width: 16},
			{Title: "ADDRESS", Width: 44},
		})
		for _, t := range m.tokens {
			table.AddRow(Row{t.Name, t.Symbol, t.TotalSupply, t.Address})
		}
		table.SelIdx = m.cursor
		sb.WriteString(table.Render())
	}

	sb.WriteString("\n")
	sb.WriteString(historyControls())
	sb.WriteString("\n")
	return sb.String()
}

func historyControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ ↑↓ ] navigate"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ ^r ] refresh"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ ^o ] open explorer"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ esc ] quit"))
	return sb.String()
}

// RunHistoryView starts the interactive token history. Blocks until the user
// presses ESC. Uses the alt screen so the terminal is restored on exit.
func RunHistoryView(agg *history.Aggregator, title, explorerURL string) error {
	m := historyModel{agg: agg, title: title, explorer: explorerURL}
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
