package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"go-falcon/internal/activity/dto"
)

// pollInterval matches the engine's own tick cadence by default; the
// dashboard is a polling client, not a subscriber, so there is no point
// refreshing faster than the engine produces new snapshots.
const pollInterval = 10 * time.Second

// Model is the bubbletea model for the crew-list dashboard (SPEC_FULL.md
// "Operator TUI"), grounded on deeklead-horde's internal/tui/convoy.Model.
type Model struct {
	client *Client
	crews  []dto.SerializedCrew
	cursor int
	err    error

	keys     KeyMap
	help     help.Model
	showHelp bool
	width    int
	height   int
}

func New(client *Client) Model {
	return Model{
		client: client,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchSnapshot, tickCmd())
}

type snapshotMsg struct {
	crews []dto.SerializedCrew
	err   error
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) fetchSnapshot() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := m.client.FetchSnapshot(ctx)
	if err != nil {
		return snapshotMsg{err: err}
	}
	return snapshotMsg{crews: resp.Crews}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchSnapshot, tickCmd())

	case snapshotMsg:
		m.err = msg.err
		if msg.err == nil {
			m.crews = msg.crews
			if m.cursor >= len(m.crews) {
				m.cursor = maxInt(0, len(m.crews)-1)
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.crews)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
		case key.Matches(msg, m.keys.Bottom):
			m.cursor = maxInt(0, len(m.crews)-1)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf(" campwatch — %d live crews ", len(m.crews))))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("fetch failed: %v", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-14s %4s %-24s %6s", "CREW", "CLASS", "PROB", "SYSTEM", "KILLS")))
	b.WriteString("\n")

	for i, crew := range m.crews {
		row := fmt.Sprintf("%-10s %-14s %4d %-24s %6d",
			shortID(crew.ID), crew.Classification, crew.Probability, crew.CurrentSystemName, len(crew.Kills))
		style := classificationStyle(string(crew.Classification))
		if i == m.cursor {
			style = selectedStyle
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}

	if len(m.crews) == 0 && m.err == nil {
		b.WriteString(unknownStyle.Render("no live crews"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	m.help.ShowAll = m.showHelp
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
