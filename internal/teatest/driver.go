// Package teatest drives bubbletea models synchronously in tests.
//
// A Driver calls Update directly and runs every returned Cmd on the test
// goroutine's behalf, feeding the resulting messages back in until the
// queue is empty. Cmds that block (tea.Tick, cursor blinks) are abandoned
// after a short timeout, so models that poll only advance when the test
// sends their tick message itself.
package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxMessages bounds one drain so a model that keeps answering itself
// cannot hang a test.
const maxMessages = 200

// DefaultCmdTimeout is long enough for Cmds backed by in-memory SQLite and
// far shorter than any refresh interval.
const DefaultCmdTimeout = 50 * time.Millisecond

type Driver struct {
	t          *testing.T
	model      tea.Model
	cmdTimeout time.Duration
	skipped    int
	quitting   bool
}

type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.model, _ = d.model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.cmdTimeout = timeout }
}

// New wraps model. Call Init to run the model's Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{t: t, model: model, cmdTimeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init runs the model's Init command and everything it leads to.
func (d *Driver) Init() {
	d.t.Helper()
	d.drain(d.model.Init())
}

// Send delivers msg and drains the resulting commands. After the model
// has quit, messages are dropped.
func (d *Driver) Send(msg tea.Msg) {
	d.t.Helper()
	if d.quitting {
		return
	}
	var cmd tea.Cmd
	d.model, cmd = d.model.Update(msg)
	d.drain(cmd)
}

// Press sends one key by its bubbletea name: a single character, or a
// name such as "enter", "esc", "up" or "ctrl+c".
func (d *Driver) Press(key string) {
	d.t.Helper()
	d.Send(keyMsg(key))
}

// Type presses each rune of s in turn.
func (d *Driver) Type(s string) {
	d.t.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (d *Driver) View() string { return d.model.View() }

func (d *Driver) Model() tea.Model { return d.model }

// Quitting reports whether the model has returned tea.Quit.
func (d *Driver) Quitting() bool { return d.quitting }

// Skipped counts commands abandoned for blocking past the timeout.
func (d *Driver) Skipped() int { return d.skipped }

func (d *Driver) drain(first tea.Cmd) {
	d.t.Helper()
	queue := []tea.Cmd{first}
	for handled := 0; len(queue) > 0; {
		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}
		msg, ok := run(cmd, d.cmdTimeout)
		if !ok {
			d.skipped++
			continue
		}
		switch msg := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case tea.QuitMsg:
			d.quitting = true
			d.model, _ = d.model.Update(msg)
			return
		}

		if handled++; handled > maxMessages {
			d.t.Logf("teatest: stopped draining after %d messages", maxMessages)
			return
		}
		var next tea.Cmd
		d.model, next = d.model.Update(msg)
		queue = append(queue, next)
	}
}

// run executes cmd, giving up after timeout. The goroutine of an abandoned
// command is left to finish on its own.
func run(cmd tea.Cmd, timeout time.Duration) (tea.Msg, bool) {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-done:
		return msg, true
	case <-timer.C:
		return nil, false
	}
}

var namedKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"tab":       tea.KeyTab,
	"backspace": tea.KeyBackspace,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"ctrl+c":    tea.KeyCtrlC,
	" ":         tea.KeySpace,
}

func keyMsg(key string) tea.KeyMsg {
	if kt, ok := namedKeys[key]; ok {
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}
