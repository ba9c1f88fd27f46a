// Package server exposes the question pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kexuanli/askdocs/internal/manifest"
	"github.com/kexuanli/askdocs/internal/rag"
)

// Asker answers a single question. *rag.Engine implements it.
type Asker interface {
	Ask(ctx context.Context, question, history string) (*rag.Answer, error)
}

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server serves the knowledge base over HTTP.
type Server struct {
	cfg        Config
	engine     Asker
	manifest   *manifest.DB
	collection string
	logger     *zap.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. manifest may be nil; logger may be nil.
func New(cfg Config, engine Asker, mdb *manifest.DB, collection string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:        cfg,
		engine:     engine,
		manifest:   mdb,
		collection: collection,
		logger:     logger,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/ask", s.handleAsk)
	r.Get("/collection", s.handleCollection)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

type askRequest struct {
	Question string `json:"question"`
	History  string `json:"history,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleAsk runs one question through the pipeline. The endpoint is
// stateless: callers who want multi-turn behavior pass their own history.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question must not be empty"})
		return
	}

	answer, err := s.engine.Ask(r.Context(), req.Question, req.History)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, manifest.ErrEmbedderMismatch) {
			status = http.StatusConflict
		}
		s.logger.Error("ask failed", zap.Error(err))
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// handleCollection reports what the active collection was built from.
func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	if s.manifest == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no manifest available"})
		return
	}
	info, err := s.manifest.Collection(s.collection)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("collection %q has not been ingested", s.collection)})
		return
	}
	files, err := s.manifest.Files(s.collection)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":          info.Name,
		"embedder":      info.Embedder,
		"dimensions":    info.Dimensions,
		"chunk_size":    info.ChunkSize,
		"chunk_overlap": info.ChunkOverlap,
		"files":         len(files),
		"updated_at":    info.UpdatedAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("server listening", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
