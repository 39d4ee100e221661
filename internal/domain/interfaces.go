package domain

// Document represents a single uploaded file after text extraction.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a fixed-size part of a document used for indexing.
type Chunk struct {
	DocumentID string `json:"document_id"`
	ChunkID    string `json:"chunk_id"`
	Text       string `json:"text"`
	Index      int    `json:"index"`
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// TokenUsage is derived per answered query and never persisted.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// HistoryEntry is a display-only (query, response) pair of the RAG shell.
type HistoryEntry struct {
	Query    string
	Response string
	Usage    TokenUsage
	// Rule is set when the response came from a canned reply.
	Rule bool
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
