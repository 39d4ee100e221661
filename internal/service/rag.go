package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"ragchat/internal/domain"
	"ragchat/internal/extract"
	"ragchat/internal/history"
	"ragchat/internal/llm"
	"ragchat/internal/metrics"
	"ragchat/internal/prompt"
	"ragchat/internal/retrieval"
	"ragchat/internal/rules"
	"ragchat/internal/tokens"
)

// Deps are the collaborators of a RAG session. Provider may be nil until a
// credential is supplied; Summarizer and Metrics are optional.
type Deps struct {
	Chunker    domain.Chunker
	Store      *retrieval.Store
	Rules      *rules.Matcher
	Summarizer domain.Summarizer
	Provider   llm.Provider
	Metrics    *metrics.Metrics
}

// Upload describes an ingested file.
type Upload struct {
	Name    string
	Chunks  int
	Summary string
}

// Turn is a query in flight. Rule turns and non-streaming turns carry the
// full Reply; streaming turns carry Fragments instead.
type Turn struct {
	Query     string
	Reply     string
	Rule      bool
	Prompt    string
	Context   []string
	Usage     domain.TokenUsage
	Fragments <-chan llm.Fragment
}

// Streaming reports whether the response still has to be drained.
func (t *Turn) Streaming() bool { return t.Fragments != nil }

// RAGService answers queries from uploaded documents. Each query is answered
// on its own; earlier turns are kept for display only.
type RAGService struct {
	completer
	chunker    domain.Chunker
	store      *retrieval.Store
	rules      *rules.Matcher
	summarizer domain.Summarizer
	history    *history.Store[domain.HistoryEntry]
}

func NewRAGService(deps Deps, opts Options) *RAGService {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.SummarySentences <= 0 {
		opts.SummarySentences = 3
	}
	if deps.Rules == nil {
		deps.Rules = rules.NewMatcher(nil)
	}
	return &RAGService{
		completer:  completer{opts: opts, provider: deps.Provider, metrics: deps.Metrics},
		chunker:    deps.Chunker,
		store:      deps.Store,
		rules:      deps.Rules,
		summarizer: deps.Summarizer,
		history:    history.New[domain.HistoryEntry](),
	}
}

// IngestFile extracts, chunks and indexes the file at path.
func (s *RAGService) IngestFile(ctx context.Context, path string) (Upload, error) {
	text, err := extract.File(path)
	if err != nil {
		return Upload{}, err
	}
	return s.ingestText(ctx, filepath.Base(path), text)
}

// IngestBytes is IngestFile for content already in memory.
func (s *RAGService) IngestBytes(ctx context.Context, name string, data []byte) (Upload, error) {
	text, err := extract.Bytes(name, data)
	if err != nil {
		return Upload{}, err
	}
	return s.ingestText(ctx, filepath.Base(name), text)
}

func (s *RAGService) ingestText(ctx context.Context, name, text string) (Upload, error) {
	up := Upload{Name: name}
	chunks, err := s.chunker.Chunk(domain.Document{ID: name, Path: name, Content: text})
	if err != nil {
		return up, fmt.Errorf("chunk %s: %w", name, err)
	}
	if err := s.store.Ingest(ctx, chunks); err != nil {
		return up, fmt.Errorf("ingest %s: %w", name, err)
	}
	up.Chunks = len(chunks)
	s.metrics.ObserveIngest(len(chunks))
	if s.summarizer != nil && strings.TrimSpace(text) != "" {
		summary, err := s.summarizer.Summarize(text, s.opts.SummarySentences)
		if err != nil {
			return up, fmt.Errorf("summarize %s: %w", name, err)
		}
		up.Summary = summary
	}
	return up, nil
}

// Documents reports how many chunks are indexed.
func (s *RAGService) Documents() int { return s.store.Len() }

// Begin starts answering query. A rule match returns immediately with the
// canned reply. Otherwise the top chunks are retrieved, the grounding prompt
// is assembled and sent as the only message of a fresh completion.
func (s *RAGService) Begin(ctx context.Context, query string) (*Turn, error) {
	if reply, ok := s.rules.Match(query); ok {
		return &Turn{
			Query: query,
			Reply: reply,
			Rule:  true,
			Usage: domain.TokenUsage{InputTokens: tokens.Count(query)},
		}, nil
	}
	provider := s.current()
	if provider == nil {
		return nil, s.Failed(llm.ErrAuth)
	}
	retrieved, err := s.store.Query(ctx, query, s.opts.TopK)
	if err != nil {
		return nil, s.Failed(err)
	}
	p := prompt.Assemble(retrieved, query)
	turn := &Turn{
		Query:   query,
		Prompt:  p,
		Context: retrieved,
		Usage:   domain.TokenUsage{InputTokens: tokens.Count(p)},
	}
	req := s.request([]llm.Message{{Role: llm.RoleUser, Content: p}})
	if s.opts.Stream {
		fragments, err := provider.Stream(ctx, req)
		if err != nil {
			return nil, s.Failed(err)
		}
		turn.Fragments = fragments
		return turn, nil
	}
	reply, err := provider.Complete(ctx, req)
	if err != nil {
		return nil, s.Failed(err)
	}
	turn.Reply = reply
	return turn, nil
}

// Finish records a completed turn with its output token count.
func (s *RAGService) Finish(turn *Turn, response string) domain.HistoryEntry {
	turn.Usage.OutputTokens = tokens.Count(response)
	entry := domain.HistoryEntry{
		Query:    turn.Query,
		Response: response,
		Usage:    turn.Usage,
		Rule:     turn.Rule,
	}
	s.history.Append(entry)
	path := metrics.PathRAG
	if turn.Rule {
		path = metrics.PathRule
	}
	s.metrics.ObserveTurn(path, turn.Usage.InputTokens, turn.Usage.OutputTokens)
	return entry
}

// Ask answers query to completion.
func (s *RAGService) Ask(ctx context.Context, query string) (domain.HistoryEntry, error) {
	turn, err := s.Begin(ctx, query)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	response := turn.Reply
	if turn.Streaming() {
		response, err = llm.Collect(turn.Fragments)
		if err != nil {
			return domain.HistoryEntry{}, s.Failed(err)
		}
	}
	return s.Finish(turn, response), nil
}

// History returns the answered turns in order.
func (s *RAGService) History() []domain.HistoryEntry { return s.history.All() }

// SessionID identifies this session.
func (s *RAGService) SessionID() string { return s.history.ID() }
