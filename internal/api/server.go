// Package api serves chapter generation over HTTP. Generation runs
// asynchronously: a request is accepted as a job and polled for its result.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wh0isdsmith/narr-ai-tive/internal/gemini"
	"github.com/wh0isdsmith/narr-ai-tive/internal/pipeline"
)

// StatsSource exposes latency aggregates for the model calls.
type StatsSource interface {
	Stats() map[string]gemini.StatsSnapshot
}

// Server is the HTTP API server.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llm          StatsSource
	log          *slog.Logger
	apiKey       string
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, llm StatsSource, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		orchestrator: orch,
		llm:          llm,
		log:          log,
		apiKey:       apiKey,
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
		r.Use(AuthMiddleware(s.apiKey, s.log))

		r.Post("/api/generate", s.handleGenerate)
		r.Get("/api/generate/{jobID}/status", s.handleGenerateStatus)
		r.Post("/api/plot", s.handlePlot)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
