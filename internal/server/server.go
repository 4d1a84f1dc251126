// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the session workspace as a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/pdiddy/exercise-engine/internal/export"
	"github.com/pdiddy/exercise-engine/internal/session"
	"github.com/pdiddy/exercise-engine/internal/store"
	"github.com/pdiddy/exercise-engine/pkg/types"
)

// DefaultMaxUpload bounds the size of an uploaded document.
const DefaultMaxUpload = 50 << 20

// Workspace is the session state the API operates on.
type Workspace interface {
	Analyze(ctx context.Context, document string, data []byte, progress types.ProgressFunc) (types.Session, error)
	Transform(ctx context.Context, topic string, progress types.ProgressFunc) ([]types.TransformedTask, error)
	Current() (types.Session, bool)
	Restore(sess types.Session)
}

// History lists and loads stored sessions.
type History interface {
	Sessions(ctx context.Context, limit int) ([]types.SessionSummary, error)
	Load(ctx context.Context, id string) (types.Session, error)
}

// Config wires the API. History may be nil, which disables the /api/sessions routes.
type Config struct {
	Workspace Workspace
	History   History
	Topics    func() []string
	MaxUpload int64
	Log       zerolog.Logger
}

// Server handles API requests.
type Server struct {
	cfg Config
	log zerolog.Logger
}

// New returns a Server for cfg.
func New(cfg Config) *Server {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if cfg.Topics == nil {
		cfg.Topics = func() []string { return nil }
	}
	return &Server{cfg: cfg, log: cfg.Log.With().Str("component", "server").Logger()}
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/topics", s.handleTopics)
		r.Get("/session", s.handleSession)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/transform", s.handleTransform)

		if s.cfg.History != nil {
			r.Get("/sessions", s.handleSessions)
			r.Get("/sessions/{id}", s.handleLoadSession)
			r.Post("/sessions/{id}/restore", s.handleRestoreSession)
		}
	})

	return r
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	topics := s.cfg.Topics()
	if topics == nil {
		topics = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"topics": topics})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.cfg.Workspace.Current()
	if !ok {
		s.respondError(w, r, session.ErrNoSession)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload)

	file, header, err := r.FormFile("document")
	if err != nil {
		s.respondError(w, r, types.ConfigurationError(fmt.Sprintf("multipart field \"document\" is required: %v", err)))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, types.ConfigurationError(fmt.Sprintf("reading upload: %v", err)))
		return
	}

	sess, err := s.cfg.Workspace.Analyze(r.Context(), header.Filename, data, nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

type transformRequest struct {
	Topic string `json:"topic"`
}

type transformResponse struct {
	Topic string                  `json:"topic"`
	Tasks []types.TransformedTask `json:"tasks"`
	Text  string                  `json:"text"`
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, types.ConfigurationError("invalid request body"))
		return
	}

	out, err := s.cfg.Workspace.Transform(r.Context(), req.Topic, nil)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := transformResponse{Tasks: out, Text: export.Text(out)}
	if len(out) > 0 {
		resp.Topic = out[0].Topic
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, r, types.ConfigurationError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	list, err := s.cfg.History.Sessions(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if list == nil {
		list = []types.SessionSummary{}
	}
	respondJSON(w, http.StatusOK, map[string][]types.SessionSummary{"sessions": list})
}

func (s *Server) handleLoadSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.cfg.History.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleRestoreSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.cfg.History.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.cfg.Workspace.Restore(sess)
	respondJSON(w, http.StatusOK, sess)
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string          `json:"error"`
	Kind  types.ErrorKind `json:"kind,omitempty"`
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	switch types.KindOf(err) {
	case types.KindConfiguration:
		return http.StatusBadRequest
	case types.KindRasterize:
		return http.StatusUnprocessableEntity
	case types.KindTransport, types.KindRemoteRejection, types.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	var perr *types.Error
	if errors.As(err, &perr) {
		msg = perr.Detail()
	}

	evt := s.log.Warn()
	if status >= http.StatusInternalServerError {
		evt = s.log.Error()
	}
	evt.Err(err).
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Int("status", status).
		Msg("request failed")

	respondJSON(w, status, errorResponse{Error: msg, Kind: types.KindOf(err)})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
