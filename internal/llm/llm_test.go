package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type chatBody struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

func completionServer(t *testing.T, seen *chatBody) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var body chatBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if seen != nil {
			*seen = body
		}
		if body.Stream {
			w.Header().Set("Content-Type", "text/event-stream")
			for _, piece := range []string{"Hello", ", ", "world!"} {
				fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", piece)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "1",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": "Hello, world!"},
				"finish_reason": "stop",
			}},
		})
	}))
}

func TestCompletePassesRequestThrough(t *testing.T) {
	var seen chatBody
	server := completionServer(t, &seen)
	defer server.Close()

	p := NewGroq("test-key", server.URL)
	got, err := p.Complete(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "Hi"}},
		Model:       "llama-3.1-8b-instant",
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if got != "Hello, world!" {
		t.Errorf("unexpected response: %q", got)
	}
	if seen.Model != "llama-3.1-8b-instant" || seen.Stream {
		t.Errorf("unexpected request: %+v", seen)
	}
	if seen.Temperature < 0.69 || seen.Temperature > 0.71 {
		t.Errorf("temperature not passed through: %v", seen.Temperature)
	}
	if len(seen.Messages) != 1 || seen.Messages[0].Content != "Hi" {
		t.Errorf("unexpected messages: %+v", seen.Messages)
	}
}

func TestStreamConcatenatesToFullResponse(t *testing.T) {
	server := completionServer(t, nil)
	defer server.Close()

	p := NewOpenAI("test-key", server.URL)
	ch, err := p.Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Hi"}},
		Model:    "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	var parts []string
	for f := range ch {
		if f.Err != nil {
			t.Fatalf("fragment error: %v", f.Err)
		}
		parts = append(parts, f.Content)
	}
	if len(parts) != 3 {
		t.Errorf("expected 3 fragments, got %d", len(parts))
	}
	if strings.Join(parts, "") != "Hello, world!" {
		t.Errorf("unexpected stream content: %q", strings.Join(parts, ""))
	}
}

func TestUnauthorizedIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	p := NewGroq("test-key", server.URL)
	_, err := p.Complete(context.Background(), Request{Model: "m", Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	_, err = p.Stream(context.Background(), Request{Model: "m", Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth from stream, got %v", err)
	}
}

func TestServerErrorIsProviderError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer server.Close()

	p := NewOpenAI("test-key", server.URL)
	_, err := p.Complete(context.Background(), Request{Model: "m", Messages: []Message{{Role: RoleUser, Content: "x"}}})
	if !errors.Is(err, ErrProvider) || errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestNewRequiresCredential(t *testing.T) {
	if _, err := New(Groq, "  ", ""); !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if _, err := New("anthropic", "k", ""); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	for _, name := range Names() {
		p, err := New(name, "k", "")
		if err != nil {
			t.Fatalf("New(%s): %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("provider name %q, want %q", p.Name(), name)
		}
		if DefaultModel(name) != p.Models()[0] {
			t.Errorf("default model mismatch for %s", name)
		}
	}
}

func TestCollect(t *testing.T) {
	ch := make(chan Fragment, 3)
	ch <- Fragment{Content: "par"}
	ch <- Fragment{Content: "tial"}
	ch <- Fragment{Err: ErrProvider}
	close(ch)
	got, err := Collect(ch)
	if !errors.Is(err, ErrProvider) || got != "partial" {
		t.Fatalf("Collect = %q, %v", got, err)
	}
}
