package embedding

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// CorpusBound is implemented by embedders whose vector space is derived from
// the whole corpus. After Prepare, every previously produced vector is stale.
type CorpusBound interface {
	CorpusBound() bool
}

// IsCorpusBound reports whether e must be re-prepared on every corpus change.
func IsCorpusBound(e Embedder) bool {
	cb, ok := e.(CorpusBound)
	return ok && cb.CorpusBound()
}
