package vectorstore

import (
	"context"

	"ragchat/internal/domain"
)

// Storage persists vectors and supports similarity search. Upsert replaces
// any chunk already stored under the same ChunkID.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error)
	Clear(ctx context.Context) error
}

// Loader is implemented by durable backends that can hand back the chunks
// they already hold, e.g. after a restart.
type Loader interface {
	Load(ctx context.Context) ([]domain.Chunk, error)
}
