package prompt

import (
	"strings"
	"testing"
)

func TestAssemble(t *testing.T) {
	chunks := []string{"Refunds are issued within 14 days.", "Items must be unused.", "Shipping is not refunded."}
	got := Assemble(chunks, "What is the refund policy?")
	want := "Use the following context to answer the question.\n\n" +
		"Context:\nRefunds are issued within 14 days. Items must be unused. Shipping is not refunded.\n\n" +
		"Question: What is the refund policy?\nAnswer:"
	if got != want {
		t.Fatalf("unexpected prompt:\n%s", got)
	}
}

func TestAssemblePreservesOrder(t *testing.T) {
	got := Assemble([]string{"second", "first"}, "q")
	if strings.Index(got, "second") > strings.Index(got, "first") {
		t.Fatal("retrieved order not preserved")
	}
}

func TestAssembleNoContext(t *testing.T) {
	got := Assemble(nil, "anything?")
	if !strings.Contains(got, "Context:\n\n") || !strings.HasSuffix(got, "Question: anything?\nAnswer:") {
		t.Fatalf("unexpected prompt: %q", got)
	}
}
