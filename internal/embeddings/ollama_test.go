package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbedBatchesOneRequest(t *testing.T) {
	var requests []ollamaEmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		requests = append(requests, req)

		resp := ollamaEmbedResponse{}
		for range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{0.1, 0.2, 0.3})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 3, srv.URL)
	vectors, err := e.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	for i, v := range vectors {
		if len(v) != 3 {
			t.Errorf("vector %d has %d dimensions", i, len(v))
		}
	}
	// The whole batch travels in a single request.
	if len(requests) != 1 {
		t.Fatalf("server saw %d requests, want 1", len(requests))
	}
	if requests[0].Model != "nomic-embed-text" {
		t.Errorf("request model = %q", requests[0].Model)
	}
	if len(requests[0].Input) != 2 || requests[0].Input[0] != "first" || requests[0].Input[1] != "second" {
		t.Errorf("request input = %v", requests[0].Input)
	}
}

func TestOllamaEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float32{{0.1}}, // one vector for two inputs
		})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 768, srv.URL)
	if _, err := e.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error on embedding count mismatch")
	}
}

func TestOllamaEmbedEmptyInput(t *testing.T) {
	e := NewOllamaEmbedder("nomic-embed-text", 768, "http://localhost:0")
	vectors, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vectors != nil {
		t.Errorf("got %v, want nil", vectors)
	}
}

func TestOllamaEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not pulled", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("missing", 768, srv.URL)
	if _, err := e.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error from non-200 response")
	}
}

func TestOllamaName(t *testing.T) {
	e := NewOllamaEmbedder("nomic-embed-text", 768, "http://localhost:11434/")
	if e.Name() != "ollama/nomic-embed-text" {
		t.Errorf("Name = %q", e.Name())
	}
	if e.Dimensions() != 768 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
	if e.baseURL != "http://localhost:11434" {
		t.Errorf("trailing slash not trimmed: %q", e.baseURL)
	}
}
