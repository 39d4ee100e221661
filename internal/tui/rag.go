package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ragchat/internal/domain"
	"ragchat/internal/service"
)

// RAGPort is the TUI-facing subset of the RAG service.
type RAGPort interface {
	IngestFile(ctx context.Context, path string) (service.Upload, error)
	Begin(ctx context.Context, query string) (*service.Turn, error)
	Finish(turn *service.Turn, response string) domain.HistoryEntry
	Failed(err error) error
	SetAPIKey(key string) error
	HasCredential() bool
	Model() (provider, model string)
}

// FileDropped asks the RAG shell to index a file that appeared outside the
// UI, such as in a watched directory.
type FileDropped struct{ Path string }

type turnMsg struct {
	turn *service.Turn
	err  error
}

type uploadMsg struct {
	upload service.Upload
	err    error
}

// exchange is one rendered query. Failed exchanges are display-only and
// never reach the session history.
type exchange struct {
	query    string
	response string
	usage    domain.TokenUsage
	rule     bool
	failed   bool
}

// RAGModel is the Bubble Tea model of the document chat.
type RAGModel struct {
	shell
	ctx     context.Context
	service RAGPort
	summary string
	log     []exchange

	pending string
	partial string
	turn    *service.Turn

	// sources of the last answer, browsable with tab and up/down
	sources     []string
	lastQuery   string
	showSources bool
	cursor      int
}

// NewRAG creates the document chat model. summary describes what has been
// indexed so far.
func NewRAG(ctx context.Context, svc RAGPort, summary string) RAGModel {
	status := "Ready. Ask a question, or /upload <path> to add a document."
	if !svc.HasCredential() {
		status = "No API key configured. Set it with /key <api-key>."
	}
	m := RAGModel{
		shell:   newShell("Ask about your documents", status),
		ctx:     ctx,
		service: svc,
		summary: summary,
	}
	m.failed = !svc.HasCredential()
	return m
}

func (m RAGModel) Init() tea.Cmd { return textinput.Blink }

func (m RAGModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg, 2)
		m.refresh()
		return m, nil
	case FileDropped:
		m.setStatus("Indexing " + filepath.Base(msg.Path) + "...")
		return m, m.ingest(msg.Path)
	case uploadMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.summary = uploadSummary(msg.upload)
		m.setStatus(fmt.Sprintf("Indexed %s: %d chunks", msg.upload.Name, msg.upload.Chunks))
		return m, nil
	case turnMsg:
		if msg.err != nil {
			m.busy = false
			m.setError(msg.err)
			m.refresh()
			return m, nil
		}
		m.turn = msg.turn
		if !msg.turn.Streaming() {
			m.finish(msg.turn.Reply)
			return m, nil
		}
		return m, waitFragment(msg.turn.Fragments)
	case fragmentMsg:
		m.partial += msg.content
		m.refresh()
		return m, waitFragment(m.turn.Fragments)
	case streamEndMsg:
		if msg.err != nil {
			m.log = append(m.log, exchange{query: m.pending, response: m.partial, failed: true})
			m.turn, m.busy = nil, false
			m.setError(m.service.Failed(msg.err))
			m.refresh()
			return m, nil
		}
		m.finish(m.partial)
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
		switch msg.String() {
		case "tab":
			if len(m.sources) > 0 {
				m.showSources = !m.showSources
				m.refresh()
			}
			return m, nil
		case "down", "up":
			if m.showSources && len(m.sources) > 0 {
				step := 1
				if msg.String() == "up" {
					step = len(m.sources) - 1
				}
				m.cursor = (m.cursor + step) % len(m.sources)
				m.refresh()
				return m, nil
			}
		case "enter":
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

func (m RAGModel) View() string {
	provider, model := m.service.Model()
	return m.render("RAG Chat", provider+"/"+model, m.summary)
}

func (m RAGModel) submit(query string) (tea.Model, tea.Cmd) {
	m.pending, m.partial, m.turn = query, "", nil
	m.showSources = false
	tick := m.startBusy("Thinking...")
	m.refresh()
	svc, ctx := m.service, m.ctx
	begin := func() tea.Msg {
		turn, err := svc.Begin(ctx, query)
		return turnMsg{turn: turn, err: err}
	}
	return m, tea.Batch(tick, begin)
}

func (m *RAGModel) finish(response string) {
	entry := m.service.Finish(m.turn, response)
	m.log = append(m.log, exchange{
		query:    entry.Query,
		response: entry.Response,
		usage:    entry.Usage,
		rule:     entry.Rule,
	})
	m.sources, m.lastQuery, m.cursor = m.turn.Context, entry.Query, 0
	m.turn, m.busy = nil, false
	m.setStatus(fmt.Sprintf("Tokens: %d in, %d out", entry.Usage.InputTokens, entry.Usage.OutputTokens))
	m.refresh()
}

func (m RAGModel) command(c command) (tea.Model, tea.Cmd) {
	switch c.name {
	case "upload":
		if c.arg == "" {
			m.setError(errors.New("usage: /upload <path>"))
			return m, nil
		}
		m.setStatus("Indexing " + filepath.Base(c.arg) + "...")
		return m, m.ingest(c.arg)
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
		m.setStatus("/upload <path>  /key <api-key>  /quit  tab: sources  pgup/pgdown: scroll")
	default:
		m.setError(fmt.Errorf("unknown command /%s", c.name))
	}
	return m, nil
}

func (m RAGModel) ingest(path string) tea.Cmd {
	svc, ctx := m.service, m.ctx
	return func() tea.Msg {
		up, err := svc.IngestFile(ctx, path)
		return uploadMsg{upload: up, err: err}
	}
}

func (m *RAGModel) refresh() {
	if m.showSources {
		m.setContent(m.renderSource())
		return
	}
	m.setContent(m.transcript())
}

func (m *RAGModel) transcript() string {
	if len(m.log) == 0 && !m.busy {
		return dimStyle.Render("Upload a document with /upload <path>, then ask a question.")
	}
	var b strings.Builder
	for _, ex := range m.log {
		b.WriteString(userStyle.Render("You: ") + ex.query + "\n")
		switch {
		case ex.failed:
			b.WriteString(ex.response + "\n" + errorStyle.Render("(interrupted)"))
		case ex.rule:
			b.WriteString(ex.response + "\n" + dimStyle.Render(usageLine(ex.usage)+" · canned reply"))
		default:
			b.WriteString(m.markdown(ex.response) + "\n" + dimStyle.Render(usageLine(ex.usage)))
		}
		b.WriteString("\n\n")
	}
	if m.busy {
		b.WriteString(userStyle.Render("You: ") + m.pending + "\n")
		b.WriteString(m.partial + cursor)
	}
	return b.String()
}

func (m *RAGModel) renderSource() string {
	text := m.sources[m.cursor]
	title := fmt.Sprintf("Source %d/%d for %q  (tab to return)", m.cursor+1, len(m.sources), m.lastQuery)
	return title + "\n\n" + highlightBestSentence(text, m.lastQuery)
}

func usageLine(u domain.TokenUsage) string {
	return fmt.Sprintf("tokens in %d, out %d", u.InputTokens, u.OutputTokens)
}

func uploadSummary(up service.Upload) string {
	summary := strings.Join(strings.Fields(up.Summary), " ")
	if summary == "" {
		return fmt.Sprintf("%s (%d chunks)", up.Name, up.Chunks)
	}
	return fmt.Sprintf("%s (%d chunks): %s", up.Name, up.Chunks, summary)
}
