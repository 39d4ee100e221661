package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"ragchat/internal/domain"
)

func openTemp(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store", "vectors.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, path
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	if err := s.Init(ctx, 2); err != nil {
		t.Fatalf("init: %v", err)
	}
	chunks := []domain.Chunk{
		{DocumentID: "b.txt", ChunkID: "b.txt_0", Index: 0, Text: "beta"},
		{DocumentID: "a.txt", ChunkID: "a.txt_1", Index: 1, Text: "alpha two"},
		{DocumentID: "a.txt", ChunkID: "a.txt_0", Index: 0, Text: "alpha one"},
	}
	if err := s.Upsert(ctx, chunks, [][]float64{{1, 0}, {0, 1}, {0.6, 0.8}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if s.Dimension() != 2 {
		t.Fatalf("dimension = %d", s.Dimension())
	}
	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	order := []string{"a.txt_0", "a.txt_1", "b.txt_0"}
	for i, id := range order {
		if loaded[i].ChunkID != id {
			t.Fatalf("load order %v", loaded)
		}
	}
	res, err := s.Search(ctx, []float64{0, 1}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 2 || res[0].Chunk.ChunkID != "a.txt_1" || res[1].Chunk.ChunkID != "a.txt_0" {
		t.Fatalf("unexpected ranking %+v", res)
	}
}

func TestUpsertOverwritesAndClear(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	defer s.Close()
	s.Init(ctx, 1)
	s.Upsert(ctx, []domain.Chunk{{ChunkID: "x_0", Text: "old"}}, [][]float64{{1}})
	s.Upsert(ctx, []domain.Chunk{{ChunkID: "x_0", Text: "new"}}, [][]float64{{1}})
	loaded, _ := s.Load(ctx)
	if len(loaded) != 1 || loaded[0].Text != "new" {
		t.Fatalf("expected single overwritten chunk, got %+v", loaded)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if loaded, _ := s.Load(ctx); len(loaded) != 0 {
		t.Fatalf("expected empty store, got %d", len(loaded))
	}
}

func TestInitWithNewDimensionDropsVectors(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	defer s.Close()
	s.Init(ctx, 2)
	s.Upsert(ctx, []domain.Chunk{{ChunkID: "x_0"}}, [][]float64{{1, 0}})
	if err := s.Init(ctx, 3); err != nil {
		t.Fatalf("init: %v", err)
	}
	if res, _ := s.Search(ctx, []float64{1, 0, 0}, 5); len(res) != 0 {
		t.Fatalf("expected stale vectors to be dropped, got %d", len(res))
	}
}
