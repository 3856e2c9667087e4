// Package dashboard is the main timer view. It drives the engine from
// key presses and repaints on engine events; the countdown itself ticks
// in the engine's background timer, not in this model.
package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/engine"
	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

type engineMsg struct {
	event engine.Event
}

type clearMessageMsg struct{}

type Model struct {
	eng    *engine.Engine
	events chan engine.Event

	state    models.EngineState
	progress progress.Model
	width    int
	height   int

	message     string
	showMessage bool
	openStats   bool
	quitting    bool
}

func New(eng *engine.Engine) Model {
	prog := progress.New(progress.WithScaledGradient("#FF7CCB", "#FDFF8C"))
	prog.Width = 60

	events := make(chan engine.Event, 32)
	eng.Subscribe(func(ev engine.Event) {
		select {
		case events <- ev:
		default:
		}
	})

	return Model{
		eng:      eng,
		events:   events,
		state:    eng.State(),
		progress: prog,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		return engineMsg{event: <-events}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-20, 80)
		return m, nil

	case engineMsg:
		m.state = m.eng.State()
		switch ev := msg.event.(type) {
		case engine.OvertimeEntered:
			m.message = "Session target reached! Keep going or press 'n' for the next session."
			m.showMessage = true
		case engine.Completed:
			if ev.NextType != "" {
				m.message = fmt.Sprintf("Session complete! Next up: %s", ev.NextType)
			} else {
				m.message = "Session complete!"
			}
			m.showMessage = true
		case engine.Interrupted:
			m.message = "Session stopped before reaching its target."
			m.showMessage = true
		}
		cmds := []tea.Cmd{waitForEvent(m.events)}
		if m.showMessage {
			cmds = append(cmds, clearAfter(5*time.Second))
		}
		return m, tea.Batch(cmds...)

	case clearMessageMsg:
		m.showMessage = false
		m.message = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.StartWork):
		m.notifyErr(m.eng.Start(models.SessionTypeWork, "", 0))
	case key.Matches(msg, keys.ShortBreak):
		m.notifyErr(m.eng.Start(models.SessionTypeShortBreak, "", 0))
	case key.Matches(msg, keys.LongBreak):
		m.notifyErr(m.eng.Start(models.SessionTypeLongBreak, "", 0))
	case key.Matches(msg, keys.PauseResume):
		if m.state.IsRunning {
			m.eng.Pause()
		} else if m.state.CurrentSession != nil {
			m.eng.Resume()
		}
	case key.Matches(msg, keys.Stop):
		m.eng.Stop()
	case key.Matches(msg, keys.Next):
		m.notifyErr(m.eng.Switch())
	case key.Matches(msg, keys.AddMinute):
		m.eng.AdjustSessionTime(60)
	case key.Matches(msg, keys.SubMinute):
		m.eng.AdjustSessionTime(-60)
	case key.Matches(msg, keys.Stats):
		m.openStats = true
		return m, tea.Quit
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}
	m.state = m.eng.State()
	if m.message != "" && m.showMessage {
		return m, clearAfter(5 * time.Second)
	}
	return m, nil
}

// notifyErr surfaces user-action conflicts (start while running, start
// while a paused session exists) as a message; engine state is unchanged.
func (m *Model) notifyErr(err error) {
	if err != nil {
		m.message = err.Error()
		m.showMessage = true
	}
}

func clearAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	containerStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Padding(2)

	timerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(2, 4).
		MarginBottom(2)
	if m.state.InOvertime {
		timerStyle = timerStyle.Background(lipgloss.Color("#D4573B"))
	}

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888")).
		MarginBottom(2)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		timerStyle.Render(m.timerDisplay()),
		m.progressView(),
		statusStyle.Render(m.statusLine()),
		m.messageView(),
		helpView(m.state),
	)

	return containerStyle.Render(content)
}

func (m Model) timerDisplay() string {
	remaining := m.state.TimeRemaining
	if remaining < 0 {
		over := -remaining
		return fmt.Sprintf("+%02d:%02d", over/60, over%60)
	}
	return fmt.Sprintf("%02d:%02d", remaining/60, remaining%60)
}

func (m Model) progressView() string {
	sess := m.state.CurrentSession
	if sess == nil {
		return m.progress.ViewAs(0)
	}
	total := sess.PlannedDuration * 60
	if total <= 0 {
		return m.progress.ViewAs(0)
	}
	percent := float64(total-m.state.TimeRemaining) / float64(total)
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	return m.progress.ViewAs(percent)
}

func (m Model) statusLine() string {
	sess := m.state.CurrentSession
	switch {
	case sess == nil:
		next := m.state.NextSessionType
		if next == "" {
			next = models.SessionTypeWork
		}
		return fmt.Sprintf("Idle. Press 's' to start a %s session", next)
	case m.state.InOvertime && m.state.IsRunning:
		return fmt.Sprintf("OVERTIME (%s) - press 'n' to move on", sess.Type)
	case m.state.IsRunning:
		if sess.TaskPath != "" {
			return fmt.Sprintf("%s - %s", sess.Type, sess.TaskPath)
		}
		return fmt.Sprintf("%s session in progress", sess.Type)
	default:
		return "PAUSED - press space to resume"
	}
}

func (m Model) messageView() string {
	if !m.showMessage || m.message == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FDFF8C")).
		Render(m.message)
}

func helpView(state models.EngineState) string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666")).
		MarginTop(2)

	var helpText string
	if state.CurrentSession == nil {
		helpText = "s: work • b: short break • l: long break • v: stats • q: quit"
	} else {
		helpText = "space: pause/resume • x: stop • n: next • +/-: adjust • v: stats • q: quit"
	}
	return helpStyle.Render(helpText)
}

// ShouldOpenStats reports whether the user asked for the stats view.
func (m Model) ShouldOpenStats() bool {
	return m.openStats
}

// ShouldQuit reports whether the user quit the app entirely.
func (m Model) ShouldQuit() bool {
	return m.quitting
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

type keyMap struct {
	StartWork   key.Binding
	ShortBreak  key.Binding
	LongBreak   key.Binding
	PauseResume key.Binding
	Stop        key.Binding
	Next        key.Binding
	AddMinute   key.Binding
	SubMinute   key.Binding
	Stats       key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	StartWork: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start work"),
	),
	ShortBreak: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "short break"),
	),
	LongBreak: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "long break"),
	),
	PauseResume: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause/resume"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop"),
	),
	Next: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next session"),
	),
	AddMinute: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "add a minute"),
	),
	SubMinute: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "drop a minute"),
	),
	Stats: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "stats"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
