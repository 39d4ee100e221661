package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ragchat/internal/llm"
)

// ChatPort is the TUI-facing subset of the chat service.
type ChatPort interface {
	Send(ctx context.Context, text string) (<-chan llm.Fragment, error)
	Commit(user, assistant string)
	Messages() []llm.Message
	Reset()
	Failed(err error) error
	SetAPIKey(key string) error
	HasCredential() bool
	Model() (provider, model string)
}

type sendMsg struct {
	fragments <-chan llm.Fragment
	err       error
}

// ChatModel is the Bubble Tea model of the plain streaming chat.
type ChatModel struct {
	shell
	ctx     context.Context
	service ChatPort

	pending   string
	partial   string
	fragments <-chan llm.Fragment
	// interrupted holds a reply that broke off, shown until the next message
	interrupted *exchange
}

func NewChat(ctx context.Context, svc ChatPort) ChatModel {
	status := "Ready. /clear starts a new conversation."
	if !svc.HasCredential() {
		status = "No API key configured. Set it with /key <api-key>."
	}
	m := ChatModel{
		shell:   newShell("Send a message", status),
		ctx:     ctx,
		service: svc,
	}
	m.failed = !svc.HasCredential()
	return m
}

func (m ChatModel) Init() tea.Cmd { return textinput.Blink }

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg, 2)
		m.refresh()
		return m, nil
	case sendMsg:
		if msg.err != nil {
			m.busy = false
			m.setError(msg.err)
			m.refresh()
			return m, nil
		}
		m.fragments = msg.fragments
		return m, waitFragment(msg.fragments)
	case fragmentMsg:
		m.partial += msg.content
		m.refresh()
		return m, waitFragment(m.fragments)
	case streamEndMsg:
		m.busy, m.fragments = false, nil
		if msg.err != nil {
			m.interrupted = &exchange{query: m.pending, response: m.partial, failed: true}
			m.setError(m.service.Failed(msg.err))
		} else {
			m.service.Commit(m.pending, m.partial)
			m.setStatus(fmt.Sprintf("%d messages in conversation", len(m.service.Messages())))
		}
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		return m, m.tick(msg)
	case tea.KeyMsg:
		if isQuit(msg) {
			return m, tea.Quit
		}
		if cmd, ok := m.scroll(msg); ok {
			return m, cmd
		}
		if msg.String() == "enter" {
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			if c, ok := parseCommand(line); ok {
				return m.command(c)
			}
			return m.submit(line)
		}
	}
	return m, m.updateInput(msg)
}

func (m ChatModel) View() string {
	provider, model := m.service.Model()
	return m.render("Chat", provider+"/"+model, fmt.Sprintf("%d messages", len(m.service.Messages())))
}

func (m ChatModel) submit(text string) (tea.Model, tea.Cmd) {
	m.pending, m.partial, m.interrupted = text, "", nil
	tick := m.startBusy("Thinking...")
	m.refresh()
	svc, ctx := m.service, m.ctx
	send := func() tea.Msg {
		fragments, err := svc.Send(ctx, text)
		return sendMsg{fragments: fragments, err: err}
	}
	return m, tea.Batch(tick, send)
}

func (m ChatModel) command(c command) (tea.Model, tea.Cmd) {
	switch c.name {
	case "clear":
		m.service.Reset()
		m.interrupted = nil
		m.setStatus("Started a new conversation.")
		m.refresh()
	case "key":
		if err := m.service.SetAPIKey(c.arg); err != nil {
			m.setError(err)
			return m, nil
		}
		provider, _ := m.service.Model()
		m.setStatus("API key set for " + provider + ".")
	case "quit", "exit":
		return m, tea.Quit
	case "help":
		m.setStatus("/clear  /key <api-key>  /quit  pgup/pgdown: scroll")
	default:
		m.setError(fmt.Errorf("unknown command /%s", c.name))
	}
	return m, nil
}

func (m *ChatModel) refresh() {
	messages := m.service.Messages()
	if len(messages) == 0 && !m.busy && m.interrupted == nil {
		m.setContent(dimStyle.Render("Say something to start the conversation."))
		return
	}
	var b strings.Builder
	for _, msg := range messages {
		if msg.Role == llm.RoleUser {
			b.WriteString(userStyle.Render("You: ") + msg.Content + "\n")
			continue
		}
		b.WriteString(m.markdown(msg.Content) + "\n\n")
	}
	if ex := m.interrupted; ex != nil {
		b.WriteString(userStyle.Render("You: ") + ex.query + "\n")
		b.WriteString(ex.response + "\n" + errorStyle.Render("(interrupted)") + "\n\n")
	}
	if m.busy {
		b.WriteString(userStyle.Render("You: ") + m.pending + "\n")
		b.WriteString(m.partial + cursor)
	}
	m.setContent(b.String())
}
