package tokens

import "testing"

func TestCountEmpty(t *testing.T) {
	if n := Count(""); n != 0 {
		t.Fatalf("Count(\"\") = %d, want 0", n)
	}
}

func TestCountNonEmpty(t *testing.T) {
	if n := Count("What is the refund policy?"); n <= 0 {
		t.Fatalf("expected positive count, got %d", n)
	}
}

func TestCountConcatenationDoesNotShrink(t *testing.T) {
	pairs := [][2]string{
		{"hello", " world"},
		{"The refund policy", " allows returns within 30 days."},
		{"日本語の", "テキスト"},
		{"a", "b"},
	}
	for _, p := range pairs {
		a, b := Count(p[0]), Count(p[1])
		ab := Count(p[0] + p[1])
		if ab < a || ab < b {
			t.Errorf("Count(%q+%q)=%d smaller than parts %d/%d", p[0], p[1], ab, a, b)
		}
	}
}

func TestCountDeterministic(t *testing.T) {
	text := "Deterministic token counts for a fixed encoding."
	if Count(text) != Count(text) {
		t.Fatal("count changed between calls")
	}
}

func TestEstimateFallback(t *testing.T) {
	var c *Counter
	if got := c.Count("abcdefgh"); got != 2 {
		t.Fatalf("estimate = %d, want 2", got)
	}
	if got := (&Counter{}).Count("abc"); got != 1 {
		t.Fatalf("estimate = %d, want 1", got)
	}
}
