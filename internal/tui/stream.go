package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"ragchat/internal/llm"
)

type fragmentMsg struct{ content string }

// streamEndMsg closes a stream; err is set when it broke off.
type streamEndMsg struct{ err error }

// waitFragment pulls the next fragment of a streamed response.
func waitFragment(fragments <-chan llm.Fragment) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-fragments
		if !ok {
			return streamEndMsg{}
		}
		if f.Err != nil {
			return streamEndMsg{err: f.Err}
		}
		return fragmentMsg{content: f.Content}
	}
}

type command struct {
	name string
	arg  string
}

// parseCommand splits "/name arg" input lines.
func parseCommand(line string) (command, bool) {
	if !strings.HasPrefix(line, "/") {
		return command{}, false
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, true
}
