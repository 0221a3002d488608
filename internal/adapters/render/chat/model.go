// Package chat renders the interactive knowledge-base conversation surface.
// The model is a thin observer: the conversation engine owns the message
// collection and pushes snapshots into the program as messages.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/docbrain-cli/internal/application"
	"github.com/bnema/docbrain-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Session  *application.Session
	Engine   *application.ConversationService
	Activity *application.ActivityTracker
	User     domain.User
	Title    string
}

type (
	snapshotMsg     struct{ snapshot application.ConversationSnapshot }
	scrollLatestMsg struct{}
	sendResultMsg   struct{ err error }
	resetResultMsg  struct{ err error }
	signedOutMsg    struct{}
)

type model struct {
	ctx      context.Context
	session  *application.Session
	engine   *application.ConversationService
	activity *application.ActivityTracker
	title    string

	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model
	styles   styles

	snapshot application.ConversationSnapshot
	status   string
	width    int
	height   int
	ready    bool
}

func newModel(ctx context.Context, opts Options) model {
	input := textarea.New()
	input.Placeholder = "Ask the knowledge base..."
	input.ShowLineNumbers = false
	input.CharLimit = 4000
	input.SetHeight(1)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	return model{
		ctx:      ctx,
		session:  opts.Session,
		engine:   opts.Engine,
		activity: opts.Activity,
		title:    opts.Title,
		input:    input,
		spin:     spin,
		styles:   newStyles(),
		snapshot: opts.Engine.Snapshot(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport(true)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		m.activity.Touch()
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.activity.Touch()
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.engine.SetNearBottom(m.viewport.AtBottom())
		return m, cmd

	case tea.FocusMsg:
		// Focus regained: timers may have slept across the expiry boundary.
		return m, m.resumeCmd()

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.refreshViewport(false)
		return m, nil

	case scrollLatestMsg:
		m.viewport.GotoBottom()
		m.engine.SetNearBottom(true)
		return m, nil

	case sendResultMsg:
		m.status = sendStatus(msg.err)
		return m, nil

	case resetResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("reset failed: %v", msg.err)
		} else {
			m.status = ""
		}
		return m, nil

	case signedOutMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		text := m.input.Value()
		m.input.Reset()
		m.status = ""
		return m, m.sendCmd(text)
	case "ctrl+g":
		return m, m.jumpCmd()
	case "ctrl+r":
		return m, m.resetCmd()
	case "up", "down", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.engine.SetNearBottom(m.viewport.AtBottom())
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.snapshot.PendingLatest {
		b.WriteString(m.styles.pending.Render("new messages below  (ctrl+g to jump)"))
	} else if m.snapshot.Waiting {
		b.WriteString(m.styles.waiting.Render(m.spin.View() + "waiting for answer"))
	} else if m.status != "" {
		b.WriteString(m.styles.status.Render(m.status))
	} else {
		b.WriteString(m.styles.help.Render("enter send · ctrl+g latest · ctrl+r reset · esc quit"))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())

	return b.String()
}

// layout splits the window between the transcript viewport and the fixed
// header, affordance line, and input rows.
func (m *model) layout() {
	chrome := 1 + 1 + m.input.Height()
	height := m.height - chrome
	if height < 1 {
		height = 1
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.width, height)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = height
	}
	m.input.SetWidth(m.width)
}

// refreshViewport re-renders the transcript. Scroll position is preserved
// unless the viewport already sat at the bottom, in which case it follows
// the newest message.
func (m *model) refreshViewport(force bool) {
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(renderTranscript(m.snapshot, m.styles, m.width))
	if wasAtBottom || force {
		m.viewport.GotoBottom()
	}
	m.engine.SetNearBottom(m.viewport.AtBottom())
}

func (m model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.engine.Send(m.ctx, text)
		return sendResultMsg{err: err}
	}
}

func (m model) jumpCmd() tea.Cmd {
	return func() tea.Msg {
		m.engine.JumpToLatest(m.ctx)
		return scrollLatestMsg{}
	}
}

func (m model) resetCmd() tea.Cmd {
	return func() tea.Msg {
		return resetResultMsg{err: m.engine.Reset(m.ctx)}
	}
}

func (m model) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		if !m.session.Resume(m.ctx) {
			return signedOutMsg{}
		}
		return nil
	}
}

func sendStatus(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrEmptyMessage):
		return ""
	case errors.Is(err, domain.ErrAssistantBusy):
		return "the assistant is still answering"
	default:
		return fmt.Sprintf("send failed: %v", err)
	}
}

// Run drives the interactive conversation surface until the user quits, the
// context ends, or the session signs out.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(
		newModel(ctx, opts),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	opts.Engine.SetChangeHandler(func(snapshot application.ConversationSnapshot) {
		p.Send(snapshotMsg{snapshot: snapshot})
	})
	opts.Engine.SetScrollHandler(func() {
		p.Send(scrollLatestMsg{})
	})

	if err := opts.Engine.Start(ctx); err != nil {
		return fmt.Errorf("start conversation: %w", err)
	}
	defer opts.Engine.Stop()

	if _, err := p.Run(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run chat: %w", err)
	}

	return nil
}
