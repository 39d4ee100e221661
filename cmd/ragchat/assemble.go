package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ragchat/internal/chunker"
	"ragchat/internal/config"
	"ragchat/internal/domain"
	"ragchat/internal/embedding"
	"ragchat/internal/embedding/openai"
	"ragchat/internal/embedding/tfidf"
	"ragchat/internal/llm"
	"ragchat/internal/metrics"
	"ragchat/internal/retrieval"
	"ragchat/internal/rules"
	"ragchat/internal/service"
	"ragchat/internal/summarizer"
	"ragchat/internal/vectorstore"
	"ragchat/internal/vectorstore/bolt"
	"ragchat/internal/vectorstore/memory"
	"ragchat/internal/vectorstore/qdrant"
)

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

// setupLogging keeps log output off the terminal while a UI owns it.
func setupLogging(debug bool) (func(), error) {
	if !debug {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile("ragchat-debug.log", "ragchat")
	if err != nil {
		return nil, err
	}
	return func() { _ = f.Close() }, nil
}

func startMetrics(ctx context.Context, cfg *config.AppConfig) *metrics.Metrics {
	m := metrics.New()
	if cfg.Metrics.Listen != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Listen); err != nil {
				log.Printf("metrics: %v", err)
			}
		}()
	}
	return m
}

func options(cfg *config.AppConfig) service.Options {
	return service.Options{
		Provider:         cfg.LLM.Provider,
		Model:            cfg.LLM.Model,
		Temperature:      cfg.LLM.Temperature,
		BaseURL:          cfg.LLM.BaseURL,
		Stream:           cfg.LLM.Stream,
		TopK:             cfg.Retrieval.TopK,
		SummarySentences: cfg.Summarizer.MaxSentences,
	}
}

// newProvider returns nil when no credential is configured; the shells ask
// for one with /key.
func newProvider(cfg *config.AppConfig) (llm.Provider, error) {
	key := cfg.APIKey()
	if key == "" {
		log.Printf("no API key in $%s", cfg.LLM.APIKeyEnv)
		return nil, nil
	}
	return llm.New(cfg.LLM.Provider, key, cfg.LLM.BaseURL)
}

// newRAGService assembles the configured components. The returned func
// releases the vector store.
func newRAGService(ctx context.Context, cfg *config.AppConfig, m *metrics.Metrics) (*service.RAGService, func() error, error) {
	var emb embedding.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		emb = client
	default:
		return nil, nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "fixed", "":
		ch = chunker.NewFixedChunker(cfg.Chunker.Size)
	case "sentence":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		return nil, nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var st vectorstore.Storage
	closer := func() error { return nil }
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, nil, fmt.Errorf("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Distance:   cfg.VectorStore.Qdrant.Distance,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	case "bolt":
		if cfg.VectorStore.Bolt == nil {
			return nil, nil, fmt.Errorf("bolt config missing")
		}
		db, err := bolt.Open(cfg.VectorStore.Bolt.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", retrieval.ErrStoreUnavailable, err)
		}
		st, closer = db, db.Close
	default:
		return nil, nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	case "none":
	default:
		_ = closer()
		return nil, nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}

	store, err := retrieval.Open(ctx, emb, st)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	provider, err := newProvider(cfg)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	svc := service.NewRAGService(service.Deps{
		Chunker:    ch,
		Store:      store,
		Rules:      rules.NewMatcher(cfg.Rules),
		Summarizer: sum,
		Provider:   provider,
		Metrics:    m,
	}, options(cfg))
	return svc, closer, nil
}
