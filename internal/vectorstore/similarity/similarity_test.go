package similarity

import "testing"

func TestTopK(t *testing.T) {
	got := TopK([]float64{0.1, 0.9, 0.5, 0.9}, 3)
	want := []int{1, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if n := len(TopK([]float64{1}, 5)); n != 1 {
		t.Fatalf("expected 1 index, got %d", n)
	}
}

func TestDot(t *testing.T) {
	if got := Dot([]float64{1, 2, 3}, []float64{4, 5}); got != 14 {
		t.Fatalf("Dot = %v, want 14", got)
	}
}
