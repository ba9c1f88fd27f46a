package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kexuanli/askdocs/internal/manifest"
	"github.com/kexuanli/askdocs/internal/rag"
)

type stubAsker struct {
	answer *rag.Answer
	err    error
	asked  string
}

func (s *stubAsker) Ask(_ context.Context, question, _ string) (*rag.Answer, error) {
	s.asked = question
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func TestHealthCheck(t *testing.T) {
	srv := New(Config{Port: 0}, &stubAsker{}, nil, "test", nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestAsk(t *testing.T) {
	asker := &stubAsker{answer: &rag.Answer{
		Text: "Paris is the capital of France.",
		Citations: []rag.Citation{
			{Source: "europe.md", Locator: "chunk 2"},
		},
	}}
	srv := New(Config{Port: 0}, asker, nil, "test", nil)

	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`{"question":"What is the capital of France?"}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if asker.asked != "What is the capital of France?" {
		t.Errorf("engine received question %q", asker.asked)
	}

	var got rag.Answer
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Text != "Paris is the capital of France." {
		t.Errorf("unexpected answer %q", got.Text)
	}
	if len(got.Citations) != 1 || got.Citations[0].Source != "europe.md" {
		t.Errorf("unexpected citations %+v", got.Citations)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	asker := &stubAsker{}
	srv := New(Config{Port: 0}, asker, nil, "test", nil)

	for _, body := range []string{`{"question":""}`, `{"question":"   "}`, `{}`} {
		req := httptest.NewRequest("POST", "/ask", strings.NewReader(body))
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
	if asker.asked != "" {
		t.Errorf("engine was called with %q despite empty question", asker.asked)
	}
}

func TestAskInvalidJSON(t *testing.T) {
	srv := New(Config{Port: 0}, &stubAsker{}, nil, "test", nil)

	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`not json`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAskEmbedderMismatch(t *testing.T) {
	asker := &stubAsker{err: manifest.ErrEmbedderMismatch}
	srv := New(Config{Port: 0}, asker, nil, "test", nil)

	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`{"question":"anything"}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestAskEngineError(t *testing.T) {
	asker := &stubAsker{err: errors.New("model unavailable")}
	srv := New(Config{Port: 0}, asker, nil, "test", nil)

	req := httptest.NewRequest("POST", "/ask", strings.NewReader(`{"question":"anything"}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestCollectionEndpoint(t *testing.T) {
	mdb, err := manifest.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer mdb.Close()

	srv := New(Config{Port: 0}, &stubAsker{}, mdb, "kb", nil)

	// Not ingested yet.
	req := httptest.NewRequest("GET", "/collection", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before ingest, got %d", w.Code)
	}

	if err := mdb.RecordCollection(manifest.CollectionInfo{
		Name: "kb", Embedder: "ollama/nomic-embed-text", Dimensions: 768,
		ChunkSize: 800, ChunkOverlap: 120,
	}); err != nil {
		t.Fatalf("RecordCollection: %v", err)
	}

	req = httptest.NewRequest("GET", "/collection", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["embedder"] != "ollama/nomic-embed-text" {
		t.Errorf("unexpected embedder %v", body["embedder"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{Port: 0, AllowAll: true}, &stubAsker{}, nil, "test", nil)

	req := httptest.NewRequest("OPTIONS", "/ask", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}
