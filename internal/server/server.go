// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/domain"
	"github.com/lexhaven/lexrag/internal/metrics"
)

// Answerer produces a grounded answer for one question.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, []string, error)
}

// Speaker converts answer text to audio.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// History is the conversation log consumed and extended by the chat endpoint.
type History interface {
	Today() ([]domain.Turn, error)
	Append(turns ...domain.Turn) ([]domain.Turn, error)
}

// Server holds the HTTP handlers for the chat API.
type Server struct {
	answerer  Answerer
	history   History
	speaker   Speaker
	staticDir string
	logger    *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSpeaker enables text-to-speech: every answer is also returned as
// base64-encoded audio and logged as an extra assistant turn.
func WithSpeaker(sp Speaker) Option {
	return func(s *Server) { s.speaker = sp }
}

// WithStaticDir serves the bundled frontend assets under /static.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// NewServer creates the API server.
func NewServer(answerer Answerer, history History, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		answerer: answerer,
		history:  history,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes mounts the API endpoints on a new chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(metrics.Middleware())

	r.Post("/chat", s.handleChat)
	r.Get("/get_history", s.handleGetHistory)
	r.Post("/log_error", s.handleLogError)
	r.Handle("/metrics", promhttp.Handler())

	if s.staticDir != "" {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir)))
		r.Get("/static/*", fileServer.ServeHTTP)
	}

	return r
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	ChatHistory   []domain.Turn `json:"chatHistory"`
	AudioResponse string        `json:"audioResponse,omitempty"`
}

// handleChat runs the answering pipeline and appends the exchange to the
// day's log. Nothing is persisted unless the full pipeline succeeds.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "No query provided")
		return
	}

	answer, _, err := s.answerer.Answer(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("chat request failed",
			zap.String("query", req.Query),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	turns := []domain.Turn{
		{Role: domain.RoleUser, Content: req.Query},
		{Role: domain.RoleAssistant, Content: answer},
	}

	var audio string
	if s.speaker != nil {
		raw, err := s.speaker.Speak(r.Context(), answer)
		if err != nil {
			s.logger.Error("text-to-speech failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		audio = base64.StdEncoding.EncodeToString(raw)
		turns = append(turns, domain.Turn{Role: domain.RoleAssistant, Content: audio})
	}

	updated, err := s.history.Append(turns...)
	if err != nil {
		s.logger.Error("failed to persist chat history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{ChatHistory: updated, AudioResponse: audio})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.history.Today()
	if err != nil {
		s.logger.Error("failed to load chat history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{ChatHistory: turns})
}

type logErrorRequest struct {
	Message string `json:"message"`
}

// handleLogError records frontend-reported errors in the server log.
func (s *Server) handleLogError(w http.ResponseWriter, r *http.Request) {
	var req logErrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "failure"})
		return
	}

	message := req.Message
	if message == "" {
		message = "Unknown frontend error"
	}
	s.logger.Error("frontend error reported", zap.String("message", message))

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
