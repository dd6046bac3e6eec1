// Package server exposes a llmbridge Client over an OpenAI-compatible HTTP
// surface, for the demo probe binary in cmd/llmbridge-probe.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sibylline/llmbridge/internal/config"
	"github.com/sibylline/llmbridge/llmtypes"
)

// Client is the subset of *llmbridge.Client / *llmbridge.CachingClient the
// probe server needs. Declaring a narrow interface here, instead of
// importing the root package's concrete type, keeps this package decoupled
// from which wrapper the caller built.
type Client interface {
	Name() string
	ChatWithTools(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool) (*llmtypes.ChatResponse, error)
	ChatStreamWithTools(ctx context.Context, messages []llmtypes.ChatMessage, tools []llmtypes.Tool) (<-chan llmtypes.ChatStreamEvent, error)
}

// Server holds the HTTP router and the loaded config; the router's Handler
// holds the façade client every request is dispatched through.
type Server struct {
	router chi.Router
	cfg    *config.Config
}

// New creates a Server, wires up routes and middleware, and returns it
// ready to use as an http.Handler.
func New(cfg *config.Config, h *Handler) *Server {
	s := &Server{cfg: cfg}
	s.routes(h)
	return s
}

func (s *Server) routes(h *Handler) {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Post("/v1/chat/completions", h.handleChatCompletions)

	s.router = r
}

// ServeHTTP makes Server satisfy http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
