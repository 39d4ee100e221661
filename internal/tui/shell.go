// Package tui renders the two interactive chat shells.
package tui

import (
	"errors"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"ragchat/internal/llm"
	"ragchat/internal/retrieval"
)

// cursor trails a response while it is still streaming.
const cursor = "▌"

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle         = lipgloss.NewStyle().Bold(true)
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	highlightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// shell is the layout shared by both front-ends: a scrolling transcript, an
// input line and a status line.
type shell struct {
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	status   string
	failed   bool
	ready    bool
	busy     bool
}

func newShell(placeholder, status string) shell {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return shell{input: ti, viewport: viewport.New(0, 0), spinner: sp, status: status}
}

// resize fits the transcript between headerLines of header and the input
// box plus the status line.
func (s *shell) resize(msg tea.WindowSizeMsg, headerLines int) {
	s.ready = true
	rw, rh := transcriptBoxStyle.GetFrameSize()
	_, qh := inputBoxStyle.GetFrameSize()
	reserved := headerLines + 1 + qh + 1
	s.viewport.Width = max(20, msg.Width-rw)
	s.viewport.Height = max(3, msg.Height-reserved-rh)
	s.input.Width = max(10, msg.Width-8)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(20, s.viewport.Width-4)),
	)
	if err != nil {
		log.Printf("markdown renderer: %v", err)
		return
	}
	s.renderer = r
}

// markdown renders text for the transcript, falling back to the raw text.
func (s *shell) markdown(text string) string {
	if s.renderer == nil {
		return text
	}
	out, err := s.renderer.Render(text)
	if err != nil {
		log.Printf("render markdown: %v", err)
		return text
	}
	return strings.Trim(out, "\n")
}

func (s *shell) setContent(content string) {
	s.viewport.SetContent(content)
	s.viewport.GotoBottom()
}

func (s *shell) setStatus(text string) {
	s.status = text
	s.failed = false
}

func (s *shell) setError(err error) {
	log.Printf("error: %v", err)
	s.status = describe(err)
	s.failed = true
}

// startBusy blocks input and starts the spinner.
func (s *shell) startBusy(status string) tea.Cmd {
	s.busy = true
	s.setStatus(status)
	return s.spinner.Tick
}

func (s *shell) tick(msg spinner.TickMsg) tea.Cmd {
	if !s.busy {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// scroll forwards paging keys to the transcript. It reports whether the key
// was consumed.
func (s *shell) scroll(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "pgup", "pgdown", "ctrl+u", "ctrl+b", "ctrl+f":
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return cmd, true
	}
	return nil, false
}

func (s *shell) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s shell) render(title, subtitle, summary string) string {
	if !s.ready {
		return "Loading..."
	}
	header := titleStyle.Render(title) + "  " + dimStyle.Render(subtitle)
	status := statusStyle.Render(s.status)
	if s.failed {
		status = errorStyle.Render(s.status)
	}
	if s.busy {
		status = s.spinner.View() + " " + status
	}
	return header + "\n" +
		dimStyle.Render(summary) + "\n" +
		transcriptBoxStyle.Render(s.viewport.View()) + "\n" +
		inputBoxStyle.Render(s.input.View()) + "\n" +
		status
}

func describe(err error) string {
	switch {
	case errors.Is(err, llm.ErrAuth):
		return "Missing or invalid API key. Set it with /key <api-key>."
	case errors.Is(err, retrieval.ErrStoreUnavailable):
		return "Document store unavailable: " + err.Error()
	case errors.Is(err, llm.ErrProvider):
		return "Completion failed: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

func isQuit(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD
}
