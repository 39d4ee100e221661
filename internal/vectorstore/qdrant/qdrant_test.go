package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ragchat/internal/domain"
)

func TestPointIDIsStable(t *testing.T) {
	if PointID("doc.txt_0") != PointID("doc.txt_0") {
		t.Fatal("point id must be deterministic")
	}
	if PointID("doc.txt_0") == PointID("doc.txt_1") {
		t.Fatal("distinct chunk ids must map to distinct points")
	}
}

func TestInitCreatesMissingCollection(t *testing.T) {
	var created bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/docs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			var body struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if body.Vectors.Size != 4 || body.Vectors.Distance != "Cosine" {
				t.Errorf("unexpected collection body %+v", body)
			}
			created = true
		}
	}))
	defer server.Close()

	s := NewStorage(Config{URL: server.URL, APIKey: "secret", Collection: "docs"})
	if err := s.Init(context.Background(), 4); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !created {
		t.Fatal("collection was not created")
	}
}

func TestUpsertAndSearch(t *testing.T) {
	var upserted []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collections/docs/points":
			var body struct {
				Points []map[string]any `json:"points"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			upserted = body.Points
		case "/collections/docs/points/search":
			json.NewEncoder(w).Encode(map[string]any{
				"result": []map[string]any{{
					"score": 0.92,
					"payload": map[string]any{
						"document_id": "faq.txt", "chunk_id": "faq.txt_2", "index": 2, "text": "Refunds take 14 days.",
					},
				}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	s := NewStorage(Config{URL: server.URL, Collection: "docs"})
	ctx := context.Background()
	err := s.Upsert(ctx, []domain.Chunk{{DocumentID: "faq.txt", ChunkID: "faq.txt_2", Index: 2, Text: "Refunds take 14 days."}}, [][]float64{{0.1, 0.2}})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(upserted) != 1 || upserted[0]["id"] != PointID("faq.txt_2") {
		t.Fatalf("unexpected points %+v", upserted)
	}
	res, err := s.Search(ctx, []float64{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 1 || res[0].Chunk.ChunkID != "faq.txt_2" || res[0].Chunk.Index != 2 || res[0].Score != 0.92 {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestSearchUnreachable(t *testing.T) {
	s := NewStorage(Config{URL: "http://127.0.0.1:1", Collection: "docs"})
	if _, err := s.Search(context.Background(), []float64{1}, 1); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}
