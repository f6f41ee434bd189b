// Package server provides the HTTP JSON API around the analyzer.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/raphaelgruber/chatlens/internal/analyzer"
	"github.com/raphaelgruber/chatlens/internal/llm"
	"github.com/raphaelgruber/chatlens/internal/models"
	"github.com/raphaelgruber/chatlens/internal/parser"
)

// Server serves the analysis API.
type Server struct {
	router    *chi.Mux
	analyzer  *analyzer.Analyzer
	llm       llm.Client
	modelName string
	addr      string
	logger    *slog.Logger
}

// New builds the server and its routes.
func New(addr string, a *analyzer.Analyzer, client llm.Client, modelName string, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		analyzer:  a,
		llm:       client,
		modelName: modelName,
		addr:      addr,
		logger:    logger,
	}

	router.Get("/api/health", s.health)
	router.Get("/api/stats", s.stats)
	router.Post("/api/parse/text", s.parseText)
	router.Post("/api/parse/file", s.parseFile)
	router.Post("/api/analyze/text", s.analyzeText)
	router.Post("/api/analyze/file", s.analyzeFile)

	return s
}

// Handler exposes the router (used by tests).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves until the listener fails.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.addr)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"llm_available": s.llm.IsAvailable(r.Context()),
		"model":         s.modelName,
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.analyzer.Metrics().Snapshot())
}

// conversationResponse is the parse-only response shape.
type conversationResponse struct {
	MessageCount int              `json:"message_count"`
	Participants []string         `json:"participants"`
	StartDate    *time.Time       `json:"start_date"`
	EndDate      *time.Time       `json:"end_date"`
	Messages     []models.Message `json:"messages"`
}

func newConversationResponse(c *models.Conversation) conversationResponse {
	resp := conversationResponse{
		MessageCount: c.Len(),
		Participants: c.Participants(),
		Messages:     c.Messages,
	}
	if resp.Messages == nil {
		resp.Messages = []models.Message{}
	}
	if start, ok := c.StartDate(); ok {
		end, _ := c.EndDate()
		resp.StartDate = &start
		resp.EndDate = &end
	}
	return resp
}

func (s *Server) parseText(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")
	if text == "" {
		writeError(w, http.StatusBadRequest, "missing form field: text")
		return
	}

	conversation, err := s.analyzer.Parse(text)
	if err != nil {
		s.writeAnalyzerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newConversationResponse(conversation))
}

func (s *Server) parseFile(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := saveUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	conversation, err := s.analyzer.Parse(path)
	if err != nil {
		s.writeAnalyzerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newConversationResponse(conversation))
}

func (s *Server) analyzeText(w http.ResponseWriter, r *http.Request) {
	text := r.FormValue("text")
	if text == "" {
		writeError(w, http.StatusBadRequest, "missing form field: text")
		return
	}

	opts, err := filterOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), text, opts)
	if err != nil {
		s.writeAnalyzerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) analyzeFile(w http.ResponseWriter, r *http.Request) {
	path, cleanup, err := saveUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	opts, err := filterOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), path, opts)
	if err != nil {
		s.writeAnalyzerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeAnalyzerError maps pipeline errors onto status codes: unrecognized
// input is the caller's problem, a backend failure is retryable later.
func (s *Server) writeAnalyzerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, parser.ErrUnrecognizedInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, llm.ErrBackend):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
