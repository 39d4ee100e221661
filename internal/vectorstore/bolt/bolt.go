// Package bolt is a durable vector store on a single bbolt file.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"ragchat/internal/domain"
	"ragchat/internal/vectorstore/similarity"
)

var (
	bucketChunks  = []byte("chunks")
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyDimension  = []byte("dimension")
)

// Storage keeps chunks and their vectors keyed by chunk id and ranks them
// by brute-force cosine similarity.
type Storage struct {
	db *bbolt.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketChunks, bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error { return s.db.Close() }

// Init records the vector dimension. Stored vectors of another dimension
// cannot be compared and are dropped.
func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if cur := meta.Get(keyDimension); cur != nil && int(binary.BigEndian.Uint64(cur)) != dimension {
			if err := resetBuckets(tx); err != nil {
				return err
			}
			meta = tx.Bucket(bucketMeta)
		}
		return meta.Put(keyDimension, binary.BigEndian.AppendUint64(nil, uint64(dimension)))
	})
}

// Dimension returns the recorded dimension, 0 when none.
func (s *Storage) Dimension() int {
	dim := 0
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketMeta).Get(keyDimension); v != nil {
			dim = int(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return dim
}

func (s *Storage) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		cb, vb := tx.Bucket(bucketChunks), tx.Bucket(bucketVectors)
		for i, ch := range chunks {
			data, err := json.Marshal(ch)
			if err != nil {
				return err
			}
			key := []byte(ch.ChunkID)
			if err := cb.Put(key, data); err != nil {
				return err
			}
			if err := vb.Put(key, encodeVector(vectors[i])); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	var (
		ids    [][]byte
		scores []float64
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).ForEach(func(k, v []byte) error {
			vec, err := decodeVector(v)
			if err != nil {
				return fmt.Errorf("chunk %s: %w", k, err)
			}
			ids = append(ids, append([]byte(nil), k...))
			scores = append(scores, similarity.Dot(vec, vector))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	idxs := similarity.TopK(scores, topK)
	results := make([]domain.SearchResult, 0, len(idxs))
	err = s.db.View(func(tx *bbolt.Tx) error {
		cb := tx.Bucket(bucketChunks)
		for _, i := range idxs {
			var ch domain.Chunk
			if err := json.Unmarshal(cb.Get(ids[i]), &ch); err != nil {
				return fmt.Errorf("chunk %s: %w", ids[i], err)
			}
			results = append(results, domain.SearchResult{Chunk: ch, Score: scores[i]})
		}
		return nil
	})
	return results, err
}

// Load returns every stored chunk ordered by document and position.
func (s *Storage) Load(_ context.Context) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketChunks).ForEach(func(_, v []byte) error {
			var ch domain.Chunk
			if err := json.Unmarshal(v, &ch); err != nil {
				return err
			}
			chunks = append(chunks, ch)
			return nil
		})
	})
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].DocumentID != chunks[j].DocumentID {
			return chunks[i].DocumentID < chunks[j].DocumentID
		}
		return chunks[i].Index < chunks[j].Index
	})
	return chunks, err
}

func (s *Storage) Clear(_ context.Context) error {
	return s.db.Update(resetBuckets)
}

func resetBuckets(tx *bbolt.Tx) error {
	for _, b := range [][]byte{bucketChunks, bucketVectors, bucketMeta} {
		if err := tx.DeleteBucket(b); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		if _, err := tx.CreateBucket(b); err != nil {
			return err
		}
	}
	return nil
}

func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

func decodeVector(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, errors.New("corrupt vector")
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v, nil
}
