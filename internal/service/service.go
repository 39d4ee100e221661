// Package service holds the two chat sessions behind the terminal UIs.
package service

import (
	"errors"
	"sync"

	"ragchat/internal/llm"
	"ragchat/internal/metrics"
	"ragchat/internal/retrieval"
)

// Options configures completion calls.
type Options struct {
	Provider    string
	Model       string
	Temperature float64
	BaseURL     string
	// Stream selects incremental responses for the RAG session. The chat
	// session always streams.
	Stream bool
	TopK   int
	// SummarySentences bounds the summary returned for an upload.
	SummarySentences int
}

// completer owns the provider of a session. It starts empty when no
// credential is configured and is filled by SetAPIKey.
type completer struct {
	mu       sync.Mutex
	opts     Options
	provider llm.Provider
	metrics  *metrics.Metrics
}

// SetAPIKey replaces the session credential.
func (c *completer) SetAPIKey(key string) error {
	p, err := llm.New(c.opts.Provider, key, c.opts.BaseURL)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.provider = p
	c.mu.Unlock()
	return nil
}

// HasCredential reports whether completions can be attempted.
func (c *completer) HasCredential() bool {
	return c.current() != nil
}

// Model returns the provider and model in use.
func (c *completer) Model() (provider, model string) {
	return c.opts.Provider, c.opts.Model
}

// Failed records err against the failure counters and returns it.
func (c *completer) Failed(err error) error {
	if err != nil {
		c.metrics.ObserveFailure(failureKind(err))
	}
	return err
}

func (c *completer) current() llm.Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provider
}

func (c *completer) request(messages []llm.Message) llm.Request {
	return llm.Request{
		Messages:    messages,
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, llm.ErrAuth):
		return "auth"
	case errors.Is(err, retrieval.ErrStoreUnavailable):
		return "store"
	case errors.Is(err, llm.ErrProvider):
		return "provider"
	default:
		return "other"
	}
}
