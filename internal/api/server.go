// Package api exposes the resolution pipeline over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/llm"
	"github.com/gbarros/docfields/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docfields.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llm          *llm.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. llmClient may be nil when
// delegation is disabled.
func NewServer(orch *pipeline.Orchestrator, llmClient *llm.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		llm:          llmClient,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Get("/api/extract/{jobID}", s.handleExtractStatus)
		r.Post("/api/resolve", s.handleResolve)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
