package chatcmder

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/neat/pkg/chat"
	"github.com/papercomputeco/neat/pkg/cliui"
)

const (
	// chrome is the number of lines below the viewport: status, input, help.
	chrome = 3

	eventBuffer = 64
)

var (
	tuiStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tuiSpinStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

type chatKeyMap struct {
	Send   key.Binding
	Cancel key.Binding
	Up     key.Binding
	Down   key.Binding
	Quit   key.Binding
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Cancel, k.Up, k.Down, k.Quit}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Send, k.Cancel}, {k.Up, k.Down, k.Quit}}
}

func defaultKeyMap() chatKeyMap {
	return chatKeyMap{
		Send:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Up:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		Down:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// messageMsg carries a message appended by the session.
type messageMsg struct {
	message chat.Message
}

// replyDoneMsg is sent when a submit returns.
type replyDoneMsg struct {
	err     error
	elapsed time.Duration
}

type chatModel struct {
	ctx     context.Context
	session *chat.Session
	events  <-chan chat.Message
	render  *renderer

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	keys     chatKeyMap
	help     help.Model

	// lines holds every rendered message. Messages are rendered once on
	// arrival.
	lines []string

	busy    bool
	started time.Time
	last    *replyDoneMsg
	width   int
	height  int
}

func (c *chatCommander) runTUI(ctx context.Context, streamer chat.Streamer, opts []chat.SessionOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan chat.Message, eventBuffer)
	session := chat.NewSession(streamer, append(opts, chat.WithObserver(func(m chat.Message) {
		select {
		case events <- m:
		case <-ctx.Done():
		}
	}))...)
	defer session.Close()

	model := newChatModel(ctx, session, events, c.newRenderer())

	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
		bubbletea.WithInput(c.in),
		bubbletea.WithOutput(c.out),
	)
	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func newChatModel(ctx context.Context, session *chat.Session, events <-chan chat.Message, render *renderer) chatModel {
	input := textinput.New()
	input.Prompt = userPrompt
	input.Placeholder = "Send a message"
	input.CharLimit = 0
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = tuiSpinStyle

	return chatModel{
		ctx:      ctx,
		session:  session,
		events:   events,
		render:   render,
		input:    input,
		viewport: viewport.New(80, 20),
		spinner:  spin,
		keys:     defaultKeyMap(),
		help:     help.New(),
		width:    80,
		height:   20 + chrome,
	}
}

func (m chatModel) Init() bubbletea.Cmd {
	return bubbletea.Batch(textinput.Blink, m.waitForMessage())
}

func (m chatModel) Update(msg bubbletea.Msg) (bubbletea.Model, bubbletea.Cmd) {
	switch msg := msg.(type) {
	case bubbletea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 1)
		m.input.Width = max(msg.Width-lipgloss.Width(userPrompt)-1, 1)
		m.render.width = msg.Width
		m.viewport.GotoBottom()
		return m, nil

	case messageMsg:
		line := lipgloss.NewStyle().Width(m.width).Render(m.render.render(msg.message))
		m.lines = append(m.lines, line)
		m.viewport.SetContent(strings.Join(m.lines, "\n\n"))
		m.viewport.GotoBottom()
		return m, m.waitForMessage()

	case replyDoneMsg:
		m.busy = false
		m.last = &msg
		if msg.err == nil {
			m.input.Reset()
		}
		return m, m.input.Focus()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd bubbletea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bubbletea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleKey(msg bubbletea.KeyMsg) (bubbletea.Model, bubbletea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.Cancel):
		if m.busy {
			m.session.Cancel()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd bubbletea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Send):
		if m.busy {
			return m, nil
		}
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.busy = true
		m.started = time.Now()
		m.last = nil
		m.input.Blur()
		return m, bubbletea.Batch(m.submit(text), m.spinner.Tick)
	}

	var cmd bubbletea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m chatModel) statusLine() string {
	switch {
	case m.busy:
		return m.spinner.View() + " " + tuiStatusStyle.Render("waiting for reply... "+cliui.FormatDuration(time.Since(m.started)))
	case m.last != nil:
		return cliui.Mark(m.last.err) + " " + tuiStatusStyle.Render(cliui.FormatDuration(m.last.elapsed))
	default:
		return ""
	}
}

// submit sends text on its own goroutine. Streamed messages arrive through
// the events channel while it runs.
func (m chatModel) submit(text string) bubbletea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() bubbletea.Msg {
		start := time.Now()
		err := session.Send(ctx, text)
		return replyDoneMsg{err: err, elapsed: time.Since(start)}
	}
}

func (m chatModel) waitForMessage() bubbletea.Cmd {
	events := m.events
	return func() bubbletea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return messageMsg{message: msg}
	}
}

// quit closes the session off the event loop. Close waits for the reply in
// flight, whose last messages still need the loop to drain events.
func (m chatModel) quit() bubbletea.Cmd {
	session := m.session
	return func() bubbletea.Msg {
		_ = session.Close()
		return bubbletea.Quit()
	}
}
