package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/stats"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/storage"
)

type ViewType int

const (
	TodayView ViewType = iota
	WeekView
	AllTimeView
)

type Model struct {
	viewType ViewType
	history  *storage.Service

	entries []models.HistoryEntry
	summary stats.Stats

	width         int
	height        int
	exportMessage string
	showMessage   bool
}

func New(viewType ViewType, history *storage.Service) (Model, error) {
	m := Model{
		viewType: viewType,
		history:  history,
	}
	entries, err := history.Read()
	if err != nil {
		return m, err
	}
	m.entries = entries
	m.recompute()
	return m, nil
}

func (m *Model) recompute() {
	now := time.Now()
	switch m.viewType {
	case TodayView:
		m.summary = stats.Aggregate(stats.FilterDay(m.entries, now))
	case WeekView:
		m.summary = stats.Aggregate(stats.FilterRange(m.entries, now.AddDate(0, 0, -6), now))
	default:
		m.summary = stats.Aggregate(m.entries)
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Cycle):
			m.viewType = (m.viewType + 1) % 3
			m.recompute()
			return m, nil
		case key.Matches(msg, keys.Export):
			return m, m.exportStats()
		}

	case exportResultMsg:
		m.exportMessage = msg.message
		m.showMessage = true
		return m, tea.Tick(time.Second*3, func(t time.Time) tea.Msg {
			return clearMessageMsg{}
		})

	case clearMessageMsg:
		m.showMessage = false
		m.exportMessage = ""
		return m, nil
	}

	return m, nil
}

type clearMessageMsg struct{}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(2)

	fullContent := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderSummary(),
		m.renderHelp(),
	)
	return containerStyle.Render(fullContent)
}

func (m Model) title() string {
	switch m.viewType {
	case TodayView:
		return fmt.Sprintf("Today - %s", time.Now().Format("Monday, January 2, 2006"))
	case WeekView:
		return "Last 7 Days"
	default:
		return "All Time"
	}
}

func (m Model) renderSummary() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF7CCB")).
		MarginBottom(2)

	statsStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C")).
		MarginBottom(1)

	detailStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		PaddingLeft(2)

	s := m.summary
	title := titleStyle.Render(fmt.Sprintf("📊 Pomodoro Stats - %s", m.title()))

	headline := statsStyle.Render(fmt.Sprintf(
		"Pomodoros: %d | Focus Time: %s | Streak: %d | Completion: %d%%",
		s.PomodorosCompleted,
		formatMinutes(s.TotalMinutes),
		s.CurrentStreak,
		s.CompletionRate,
	))

	lines := []string{
		fmt.Sprintf("Work sessions: %d (%d interrupted for %s)", s.TotalWork, s.TotalInterrupted, formatMinutes(s.InterruptedWorkMinutes)),
		fmt.Sprintf("Work overtime: %s", formatMinutes(s.OvertimeMinutes)),
		fmt.Sprintf("Breaks: %d (%s, overtime %s)", s.BreaksCompleted, formatMinutes(s.BreakMinutes), formatMinutes(s.BreakOvertimeMinutes)),
		fmt.Sprintf("Interruption rate: %d%% across %d sessions", s.InterruptionRate, s.TotalSessions),
	}

	var details string
	if s.TotalSessions == 0 {
		details = detailStyle.Render("No sessions yet. Time to focus! 🚀")
	} else {
		for _, line := range lines {
			details += detailStyle.Render(line) + "\n"
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		headline,
		details,
	)
}

func formatMinutes(total int) string {
	hours := total / 60
	mins := total % 60
	if hours > 0 {
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", mins)
}

func (m Model) renderHelp() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	help := "Press 'tab' to change range • 'e' to export • 'b' to go back • 'q' to quit"

	if m.showMessage && m.exportMessage != "" {
		messageStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
		help = messageStyle.Render(m.exportMessage) + "\n" + help
	}

	return helpStyle.Render(help)
}

func (m Model) exportStats() tea.Cmd {
	return func() tea.Msg {
		report := Report(m.entries)

		homeDir, err := os.UserHomeDir()
		if err != nil {
			return exportResultMsg{message: fmt.Sprintf("Failed to get home directory: %v", err)}
		}

		timestamp := time.Now().Format("2006-01-02-150405")
		filename := fmt.Sprintf("tasknotes-stats-%s.txt", timestamp)
		filePath := filepath.Join(homeDir, "Downloads", filename)

		if err := os.WriteFile(filePath, []byte(report), 0644); err != nil {
			// Fall back to the home directory when Downloads is missing.
			filePath = filepath.Join(homeDir, filename)
			if err := os.WriteFile(filePath, []byte(report), 0644); err != nil {
				return exportResultMsg{message: fmt.Sprintf("Failed to save file: %v", err)}
			}
		}

		return exportResultMsg{message: fmt.Sprintf("✅ Exported to %s", filePath)}
	}
}

type exportResultMsg struct {
	message string
}

type keyMap struct {
	Back   key.Binding
	Quit   key.Binding
	Cycle  key.Binding
	Export key.Binding
}

var keys = keyMap{
	Back: key.NewBinding(
		key.WithKeys("b", "esc"),
		key.WithHelp("b", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Cycle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "change range"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
}
