package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/eebc-chat/internal"
)

const composerHeight = 3

// Options configures the chat surface
type Options struct {
	// Backend is shown in the header and recorded in exports
	Backend string
	// Markdown renders answers through glamour
	Markdown bool
}

// turnDoneMsg carries the outcome of a resolved turn
type turnDoneMsg struct {
	reply *internal.ChatMessage
	err   error
}

// notificationMsg asks for a redraw after the toast changed
type notificationMsg struct{}

// Model is the bubbletea model of the chat screen
type Model struct {
	ctx  context.Context
	ctrl *internal.Controller
	opts Options

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	drawer   drawer
	renderer *Renderer

	width  int
	height int
	ready  bool
	info   string
}

// NewModel creates the chat model over ctrl
func NewModel(ctx context.Context, ctrl *internal.Controller, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about the EEBC (Enter to send, Alt+Enter for a new line)"
	ta.Prompt = "┃ "
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(composerHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(brandColor)

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		opts:     opts,
		textarea: ta,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		drawer:   newDrawer(ctrl.Form()),
		renderer: NewRenderer(76, opts.Markdown),
		width:    80,
		height:   24,
	}
}

// Init starts the cursor blink and the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles one message
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case turnDoneMsg:
		if msg.err != nil {
			internal.LogDebug("turn failed: %v", msg.err)
		}
		m = m.refresh(true)
		return m, nil

	case notificationMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+b":
		return m.toggleDrawer()

	case "esc":
		if m.ctrl.Form().IsOpen() {
			return m.toggleDrawer()
		}
		m.ctrl.Notifier().Dismiss()
		m.info = ""
		m = m.refresh(false)
		return m, nil
	}

	if m.ctrl.Form().IsOpen() {
		var cmd tea.Cmd
		m.drawer, cmd = m.drawer.update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter":
		return m.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.ctrl.SetDraft(m.textarea.Value())
	return m, cmd
}

func (m Model) toggleDrawer() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.ctrl.Form().Toggle() {
		m.textarea.Blur()
		m.drawer, cmd = m.drawer.open()
	} else {
		m.drawer = m.drawer.blur()
		cmd = m.textarea.Focus()
	}
	return m, cmd
}

// submit sends the draft or runs a slash command. The user message is
// appended before the request goroutine starts.
func (m Model) submit() (tea.Model, tea.Cmd) {
	draft := m.textarea.Value()
	if strings.HasPrefix(strings.TrimSpace(draft), "/") {
		m.textarea.Reset()
		m.ctrl.SetDraft("")
		return m.runCommand(strings.TrimSpace(draft))
	}

	turn, err := m.ctrl.Begin(draft)
	switch {
	case errors.Is(err, internal.ErrEmptyDraft), errors.Is(err, internal.ErrBusy):
		return m, nil
	case err != nil:
		m.ctrl.Notifier().Show(internal.NotificationText(err))
		return m, nil
	}

	m.textarea.Reset()
	m.info = ""
	m = m.refresh(true)
	return m, tea.Batch(resolveTurn(m.ctx, turn), m.spinner.Tick)
}

func resolveTurn(ctx context.Context, turn *internal.Turn) tea.Cmd {
	return func() tea.Msg {
		reply, err := turn.Resolve(ctx)
		return turnDoneMsg{reply: reply, err: err}
	}
}

func (m Model) resize(width, height int) Model {
	m.width, m.height = width, height
	m.ready = true
	m.renderer = NewRenderer(width-4, m.opts.Markdown)
	m.textarea.SetWidth(width - 2)

	// header, status line, composer and help
	chrome := 1 + 1 + composerHeight + 1
	vh := height - chrome
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	return m.refresh(true)
}

// refresh rebuilds the transcript view, optionally scrolling to the end
func (m Model) refresh(bottom bool) Model {
	var sb strings.Builder
	sb.WriteString(m.renderer.Welcome())
	sb.WriteString("\n")
	sb.WriteString(m.renderer.Transcript(m.ctrl.Transcript().Messages()))
	if m.info != "" {
		sb.WriteString(m.info + "\n")
	}
	m.viewport.SetContent(sb.String())
	if bottom {
		m.viewport.GotoBottom()
	}
	return m
}

// View renders the screen
func (m Model) View() string {
	header := headerStyle.Render("EEBC Advisor")
	if m.opts.Backend != "" {
		header += subtleStyle.Render(m.opts.Backend)
	}

	var body string
	if m.ctrl.Form().IsOpen() {
		body = m.drawer.view(m.width)
	} else {
		body = m.viewport.View()
	}

	status := ""
	if n, ok := m.ctrl.Notifier().Current(); ok {
		status = Toast(n, m.width)
	} else if m.ctrl.Busy() {
		status = m.spinner.View() + subtleStyle.Render(" Advisor is thinking…")
	}

	help := subtleStyle.Render("enter send · alt+enter newline · ctrl+b building details · /help commands · ctrl+c quit")

	parts := []string{header, body}
	if status != "" {
		parts = append(parts, status)
	}
	parts = append(parts, m.textarea.View(), help)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
