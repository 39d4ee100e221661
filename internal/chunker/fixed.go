package chunker

import (
	"strconv"

	"ragchat/internal/domain"
)

// DefaultSize is the chunk size in characters used when none is configured.
const DefaultSize = 500

// Split cuts text into consecutive, non-overlapping pieces of at most size
// characters. The last piece may be shorter. Sizes are counted in runes so
// a multibyte character is never cut in half.
func Split(text string, size int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if size <= 0 || size >= len(runes) {
		return []string{text}
	}
	out := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// FixedChunker splits documents into fixed-size character windows.
type FixedChunker struct {
	size int
}

func NewFixedChunker(size int) *FixedChunker {
	if size <= 0 {
		size = DefaultSize
	}
	return &FixedChunker{size: size}
}

// Size returns the configured window length.
func (c *FixedChunker) Size() int { return c.size }

func (c *FixedChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	pieces := Split(document.Content, c.size)
	if len(pieces) == 0 {
		return nil, nil
	}
	chunks := make([]domain.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    ChunkID(document.ID, i),
			Text:       p,
			Index:      i,
		}
	}
	return chunks, nil
}

// ChunkID derives the store id of the i-th chunk of a document.
func ChunkID(documentID string, i int) string {
	return documentID + "_" + strconv.Itoa(i)
}
