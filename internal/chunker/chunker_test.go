package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"ragchat/internal/domain"
)

func TestSplitReassembles(t *testing.T) {
	texts := []string{
		"a",
		"hello world",
		strings.Repeat("abcdefghij", 37),
		"héllo wörld, ünïcode ☃ text",
	}
	for _, text := range texts {
		for _, size := range []int{1, 3, 7, 50, 1000} {
			parts := Split(text, size)
			if got := strings.Join(parts, ""); got != text {
				t.Fatalf("size %d: reassembled %q, want %q", size, got, text)
			}
			for i, p := range parts {
				n := utf8.RuneCountInString(p)
				if i < len(parts)-1 && n != size {
					t.Fatalf("size %d: chunk %d has %d runes", size, i, n)
				}
				if n < 1 || n > size {
					t.Fatalf("size %d: chunk %d length %d out of range", size, i, n)
				}
			}
		}
	}
}

func TestSplitEmpty(t *testing.T) {
	if parts := Split("", 10); len(parts) != 0 {
		t.Fatalf("expected no chunks, got %d", len(parts))
	}
}

func TestFixedChunkerTwelveHundredChars(t *testing.T) {
	doc := domain.Document{ID: "policy.txt", Content: strings.Repeat("x", 1200)}
	chunks, err := NewFixedChunker(500).Chunk(doc)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	want := []int{500, 500, 200}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Text) != want[i] {
			t.Errorf("chunk %d: length %d, want %d", i, len(ch.Text), want[i])
		}
		if ch.ChunkID != ChunkID("policy.txt", i) {
			t.Errorf("chunk %d: id %q", i, ch.ChunkID)
		}
		if ch.DocumentID != "policy.txt" || ch.Index != i {
			t.Errorf("chunk %d: unexpected metadata %+v", i, ch)
		}
	}
}

func TestFixedChunkerDefaultSize(t *testing.T) {
	if NewFixedChunker(0).Size() != DefaultSize {
		t.Fatal("zero size should fall back to default")
	}
}

func TestSentenceChunkerOverlap(t *testing.T) {
	doc := domain.Document{ID: "d", Content: "One. Two. Three. Four. Five."}
	chunks, err := NewSentenceChunker(2, 1).Chunk(doc)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	want := []string{"One. Two.", "Two. Three.", "Three. Four.", "Four. Five."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i := range want {
		if chunks[i].Text != want[i] {
			t.Errorf("chunk %d: %q, want %q", i, chunks[i].Text, want[i])
		}
	}
}

func TestSentenceChunkerBlank(t *testing.T) {
	chunks, err := NewSentenceChunker(3, 0).Chunk(domain.Document{ID: "d", Content: "   "})
	if err != nil || chunks != nil {
		t.Fatalf("expected nil chunks, got %v, %v", chunks, err)
	}
}
