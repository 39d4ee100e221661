package service

import (
	"context"
	"sync"

	"ragchat/internal/history"
	"ragchat/internal/llm"
	"ragchat/internal/metrics"
	"ragchat/internal/tokens"
)

// ChatService is a plain conversation. The whole transcript is sent with
// every message.
type ChatService struct {
	completer
	sessionMu sync.Mutex
	history   *history.Store[llm.Message]
}

func NewChatService(provider llm.Provider, opts Options, m *metrics.Metrics) *ChatService {
	return &ChatService{
		completer: completer{opts: opts, provider: provider, metrics: m},
		history:   history.New[llm.Message](),
	}
}

// Send streams the reply to text given the conversation so far. The
// conversation is unchanged until Commit.
func (c *ChatService) Send(ctx context.Context, text string) (<-chan llm.Fragment, error) {
	provider := c.current()
	if provider == nil {
		return nil, c.Failed(llm.ErrAuth)
	}
	messages := append(c.Messages(), llm.Message{Role: llm.RoleUser, Content: text})
	fragments, err := provider.Stream(ctx, c.request(messages))
	if err != nil {
		return nil, c.Failed(err)
	}
	return fragments, nil
}

// Commit appends a successful exchange to the conversation.
func (c *ChatService) Commit(user, assistant string) {
	h := c.store()
	h.Append(llm.Message{Role: llm.RoleUser, Content: user})
	h.Append(llm.Message{Role: llm.RoleAssistant, Content: assistant})
	c.metrics.ObserveTurn(metrics.PathChat, tokens.Count(user), tokens.Count(assistant))
}

// Messages returns the conversation in order.
func (c *ChatService) Messages() []llm.Message { return c.store().All() }

// Reset starts a new session with an empty conversation.
func (c *ChatService) Reset() {
	c.sessionMu.Lock()
	c.history = history.New[llm.Message]()
	c.sessionMu.Unlock()
}

// SessionID identifies the current conversation.
func (c *ChatService) SessionID() string { return c.store().ID() }

func (c *ChatService) store() *history.Store[llm.Message] {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	return c.history
}
