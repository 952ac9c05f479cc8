package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/timeledger/internal/app"
	"github.com/alexanderramin/timeledger/internal/cli/formatter"
)

type watchKeyMap struct {
	Stop    key.Binding
	Cancel  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Stop, k.Cancel, k.Refresh, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultWatchKeys() watchKeyMap {
	return watchKeyMap{
		Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Cancel:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type (
	watchTickMsg   struct{}
	watchLoadedMsg struct {
		snap *app.TimerSnapshot
		err  error
	}
	watchStoppedMsg struct {
		stopped *app.StoppedTimer
		err     error
	}
	watchCancelledMsg struct {
		timerID int64
		err     error
	}
)

// timerWatchModel polls the caller's running timer and lets them stop or
// discard it from the keyboard.
type timerWatchModel struct {
	ctx      context.Context
	a        *App
	userID   int64
	interval time.Duration
	labels   formatter.TaskLabel

	keys watchKeyMap
	help help.Model

	snap       *app.TimerSnapshot
	loaded     bool
	confirming bool
	done       string
	err        error
}

func newTimerWatchModel(ctx context.Context, a *App, userID int64, interval time.Duration) timerWatchModel {
	if interval <= 0 {
		interval = time.Second
	}
	return timerWatchModel{
		ctx:      ctx,
		a:        a,
		userID:   userID,
		interval: interval,
		labels:   taskLabels(ctx, a),
		keys:     defaultWatchKeys(),
		help:     help.New(),
	}
}

func (m timerWatchModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m timerWatchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return watchTickMsg{} })
}

func (m timerWatchModel) load() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.a.Timers.Current(m.ctx, m.userID)
		return watchLoadedMsg{snap: snap, err: err}
	}
}

func (m timerWatchModel) stop() tea.Cmd {
	timerID := m.snap.TimerID
	return func() tea.Msg {
		stopped, err := m.a.Timers.Stop(m.ctx, app.StopTimerRequest{UserID: m.userID, TimerID: timerID})
		return watchStoppedMsg{stopped: stopped, err: err}
	}
}

func (m timerWatchModel) cancel() tea.Cmd {
	timerID := m.snap.TimerID
	return func() tea.Msg {
		return watchCancelledMsg{timerID: timerID, err: m.a.Timers.ForceStop(m.ctx, m.userID, timerID)}
	}
}

func (m timerWatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case watchTickMsg:
		if m.done != "" {
			return m, nil
		}
		return m, tea.Batch(m.load(), m.tick())

	case watchLoadedMsg:
		m.loaded = true
		m.snap, m.err = msg.snap, msg.err
		return m, nil

	case watchStoppedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.done = formatter.FormatStopped(msg.stopped, m.labels)
		return m, tea.Quit

	case watchCancelledMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.done = fmt.Sprintf("%s timer #%d\n", formatter.StyleRed.Render("Discarded"), msg.timerID)
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m timerWatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirming := m.confirming
	m.confirming = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.Stop):
		if m.snap == nil {
			return m, nil
		}
		return m, m.stop()
	case key.Matches(msg, m.keys.Cancel):
		if m.snap == nil {
			return m, nil
		}
		if !confirming {
			m.confirming = true
			return m, nil
		}
		return m, m.cancel()
	}
	return m, nil
}

func (m timerWatchModel) View() string {
	if m.done != "" {
		return m.done
	}
	var b strings.Builder
	switch {
	case !m.loaded:
		b.WriteString(formatter.Dim("Loading..."))
		b.WriteString("\n")
	default:
		b.WriteString(formatter.FormatTimer(m.snap, m.labels, m.a.tz.OrZero()))
	}
	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("Error: " + ExitMessage(m.err)))
		b.WriteString("\n")
	}
	if m.confirming {
		b.WriteString(formatter.StyleYellow.Render("Press x again to discard this timer."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
