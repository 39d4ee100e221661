// Package retrieval indexes document chunks and answers nearest-neighbour
// queries by text.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ragchat/internal/domain"
	"ragchat/internal/embedding"
	"ragchat/internal/vectorstore"
)

// ErrStoreUnavailable reports that the backing index cannot be reached or
// opened.
var ErrStoreUnavailable = errors.New("retrieval store unavailable")

// Store pairs an embedder with a vector index. It keeps the ingested chunks
// so corpus-bound embedders can be re-fitted and so lexical ranking is
// possible when embeddings carry no signal.
type Store struct {
	mu       sync.Mutex
	embedder embedding.Embedder
	index    vectorstore.Storage
	chunks   []domain.Chunk
	pos      map[string]int
	ready    bool
}

func New(embedder embedding.Embedder, index vectorstore.Storage) *Store {
	return &Store{embedder: embedder, index: index, pos: make(map[string]int)}
}

// Open builds a store and, for durable indexes, reloads the chunks they
// already hold.
func Open(ctx context.Context, embedder embedding.Embedder, index vectorstore.Storage) (*Store, error) {
	s := New(embedder, index)
	loader, ok := index.(vectorstore.Loader)
	if !ok {
		return s, nil
	}
	chunks, err := loader.Load(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	if len(chunks) == 0 {
		return s, nil
	}
	merged, pos := merge(nil, nil, chunks)
	if embedding.IsCorpusBound(embedder) {
		// vectors on disk belong to a vocabulary that no longer exists
		if err := s.rebuild(ctx, merged); err != nil {
			return nil, err
		}
	} else {
		s.ready = true
	}
	s.chunks, s.pos = merged, pos
	return s, nil
}

// Len reports the number of distinct chunks held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// Ingest adds chunks to the index. A chunk whose id is already present
// replaces the previous one.
func (s *Store) Ingest(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merged, pos := merge(s.chunks, s.pos, chunks)
	if embedding.IsCorpusBound(s.embedder) {
		if err := s.rebuild(ctx, merged); err != nil {
			return err
		}
		s.chunks, s.pos = merged, pos
		return nil
	}
	vectors, err := s.embedAll(chunks)
	if err != nil {
		return err
	}
	if !s.ready {
		if err := s.index.Init(ctx, len(vectors[0])); err != nil {
			return unavailable(err)
		}
		s.ready = true
	}
	if err := s.index.Upsert(ctx, chunks, vectors); err != nil {
		return unavailable(err)
	}
	s.chunks, s.pos = merged, pos
	return nil
}

// Query returns the texts of the k chunks most similar to text, best first.
func (s *Store) Query(ctx context.Context, text string, k int) ([]string, error) {
	results, err := s.Search(ctx, text, k)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}
	return texts, nil
}

// Search is Query with chunk metadata and scores.
func (s *Store) Search(ctx context.Context, text string, k int) ([]domain.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k <= 0 {
		k = 3
	}
	if len(s.chunks) == 0 {
		return nil, nil
	}
	vec, err := s.embedder.Embed(text)
	if err != nil {
		return nil, unavailable(fmt.Errorf("embed query: %w", err))
	}
	if isZero(vec) {
		return lexicalSearch(s.chunks, text, k), nil
	}
	res, err := s.index.Search(ctx, vec, k)
	if err != nil {
		return nil, unavailable(err)
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return lexicalSearch(s.chunks, text, k), nil
	}
	return res, nil
}

// merge returns copies of chunks and pos with added applied; an id already
// present keeps its position and takes the new content.
func merge(chunks []domain.Chunk, pos map[string]int, added []domain.Chunk) ([]domain.Chunk, map[string]int) {
	out := make([]domain.Chunk, len(chunks), len(chunks)+len(added))
	copy(out, chunks)
	outPos := make(map[string]int, len(pos)+len(added))
	for id, i := range pos {
		outPos[id] = i
	}
	for _, ch := range added {
		if i, ok := outPos[ch.ChunkID]; ok {
			out[i] = ch
			continue
		}
		outPos[ch.ChunkID] = len(out)
		out = append(out, ch)
	}
	return out, outPos
}

// rebuild re-fits the embedder on chunks and reloads the index with them.
func (s *Store) rebuild(ctx context.Context, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	if err := s.embedder.Prepare(texts); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	vectors, err := s.embedAll(chunks)
	if err != nil {
		return err
	}
	if err := s.index.Clear(ctx); err != nil {
		return unavailable(err)
	}
	if err := s.index.Init(ctx, s.embedder.Dimension()); err != nil {
		return unavailable(err)
	}
	if err := s.index.Upsert(ctx, chunks, vectors); err != nil {
		return unavailable(err)
	}
	s.ready = true
	return nil
}

func (s *Store) embedAll(chunks []domain.Chunk) ([][]float64, error) {
	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := s.embedder.Embed(chunks[i].Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %s: %w", chunks[i].ChunkID, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
