// Package llm talks to hosted chat-completion providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Roles of a conversation turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

var (
	// ErrAuth reports a missing or rejected credential.
	ErrAuth = errors.New("llm: missing or invalid API key")
	// ErrProvider reports any other failure of the remote provider.
	ErrProvider = errors.New("llm: provider error")
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is passed through to the provider unchanged.
type Request struct {
	Messages    []Message
	Model       string
	Temperature float64
}

// Fragment is one incremental piece of a streamed response. A fragment with
// Err set is always the last one.
type Fragment struct {
	Content string
	Err     error
}

// Provider is a chat-completion backend.
type Provider interface {
	Name() string
	// Models lists the model names accepted by this provider; the first is
	// the default.
	Models() []string
	Complete(ctx context.Context, req Request) (string, error)
	// Stream starts a completion and returns a channel that yields the
	// response in order and is closed once it ends.
	Stream(ctx context.Context, req Request) (<-chan Fragment, error)
}

// Provider names accepted by New.
const (
	Groq   = "groq"
	OpenAI = "openai"
)

// Names lists supported providers.
func Names() []string { return []string{Groq, OpenAI} }

// New selects a provider by name. An empty apiKey fails with ErrAuth; an
// empty baseURL uses the provider's public endpoint.
func New(name, apiKey, baseURL string) (Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrAuth
	}
	switch strings.ToLower(name) {
	case Groq, "":
		return NewGroq(apiKey, baseURL), nil
	case OpenAI:
		return NewOpenAI(apiKey, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", name)
	}
}

// Collect drains a stream into the full response text.
func Collect(fragments <-chan Fragment) (string, error) {
	var sb strings.Builder
	for f := range fragments {
		if f.Err != nil {
			return sb.String(), f.Err
		}
		sb.WriteString(f.Content)
	}
	return sb.String(), nil
}
