// Package server exposes the assistant over HTTP: POST /chat and POST /reset
// carry the conversational contract, GET /healthz and GET /metrics serve
// operations. The handlers wrap the façade one-to-one; all model and tool
// failures already resolve to well-formed replies below this layer, so the
// only error responses here are malformed requests and store failures.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hupe1980/agentchat"
	"github.com/hupe1980/agentchat/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assistant is the façade surface the HTTP layer depends on.
type Assistant interface {
	Chat(ctx context.Context, sessionID, message string) (*agentchat.ChatResult, error)
	Reset(ctx context.Context, sessionID string) error
}

// Options configures the HTTP handler.
type Options struct {
	Logger logging.Logger
}

// Server routes HTTP requests to the assistant.
type Server struct {
	assistant Assistant
	logger    logging.Logger
}

// ChatRequest is the payload for POST /chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ResetRequest is the payload for POST /reset.
type ResetRequest struct {
	SessionID string `json:"session_id"`
}

// NewHandler creates the HTTP handler for the assistant.
func NewHandler(assistant Assistant, optFns ...func(o *Options)) http.Handler {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{assistant: assistant, logger: opts.Logger}

	r := chi.NewRouter()
	r.Post("/chat", s.handleChat)
	r.Post("/reset", s.handleReset)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	return enableCORS(r)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("server.chat.bad_request", "error", err.Error())
		return
	}
	if body.SessionID == "" || body.Message == "" {
		http.Error(w, "session_id and message are required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	result, err := s.assistant.Chat(r.Context(), body.SessionID, body.Message)
	if err != nil {
		http.Error(w, "Chat failed", http.StatusInternalServerError)
		s.logger.Error("server.chat.failed", "session_id", body.SessionID, "error", err.Error())
		return
	}

	chatRequests.WithLabelValues(result.ToolUsed).Inc()
	chatDuration.Observe(time.Since(start).Seconds())

	writeJSON(w, s.logger, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var body ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("server.reset.bad_request", "error", err.Error())
		return
	}
	if body.SessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	if err := s.assistant.Reset(r.Context(), body.SessionID); err != nil {
		http.Error(w, "Reset failed", http.StatusInternalServerError)
		s.logger.Error("server.reset.failed", "session_id", body.SessionID, "error", err.Error())
		return
	}

	writeJSON(w, s.logger, map[string]bool{"ok": true})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, logger logging.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("server.response.encode_failed", "error", err.Error())
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
