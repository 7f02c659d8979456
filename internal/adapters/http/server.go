// Package http exposes the agent over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
)

// Dispatcher is the slice of the agent the HTTP layer needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, tool, query string) string
	Tools() []domain.ToolInfo
}

// Server routes JSON requests to a Dispatcher.
type Server struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	gatherer   prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics exposes the given gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewHandler builds the HTTP handler for the agent.
func NewHandler(dispatcher Dispatcher, opts ...Option) http.Handler {
	s := &Server{dispatcher: dispatcher, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/tools", s.listTools)
	r.Post("/invoke", s.invoke)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// InvokeRequest is the POST /invoke body.
type InvokeRequest struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
}

// InvokeResponse carries the textual observation back to the caller.
type InvokeResponse struct {
	Result string `json:"result"`
}

func (s *Server) invoke(w http.ResponseWriter, r *http.Request) {
	var body InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Tool == "" || body.Query == "" {
		http.Error(w, "tool and query are required", http.StatusBadRequest)
		return
	}

	// Dispatch never fails: terminal errors arrive as text, matching the
	// observation contract of the reasoning loop.
	result := s.dispatcher.Dispatch(r.Context(), body.Tool, body.Query)

	writeJSON(w, s.logger, InvokeResponse{Result: result})
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, s.dispatcher.Tools())
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}
