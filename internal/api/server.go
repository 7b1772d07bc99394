package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/longkey1/clippyai/internal/clippy"
	"github.com/longkey1/clippyai/internal/clippy/analysis"
	"github.com/longkey1/clippyai/internal/clippy/session"
	"github.com/longkey1/clippyai/internal/render"
)

const maxBodyBytes = 1 << 20

// AnalyzeRequest is the body of POST /analyze and POST /chat.
type AnalyzeRequest struct {
	Code                string                  `json:"code"`
	SessionID           string                  `json:"session_id,omitempty"`
	IsFollowup          bool                    `json:"is_followup,omitempty"`
	ConversationContext []clippy.ContextMessage `json:"conversation_context,omitempty"`
	AdditionalContext   string                  `json:"additional_context,omitempty"`
	HTML                bool                    `json:"html,omitempty"`
}

// AnalyzeResponse is the body returned by POST /analyze and POST /chat.
type AnalyzeResponse struct {
	Explanation      string `json:"explanation"`
	Fixes            string `json:"fixes"`
	ChatResponse     string `json:"chat_response,omitempty"`
	SessionID        string `json:"session_id,omitempty"`
	Mode             string `json:"mode,omitempty"`
	ExplanationHTML  string `json:"explanation_html,omitempty"`
	FixesHTML        string `json:"fixes_html,omitempty"`
	ChatResponseHTML string `json:"chat_response_html,omitempty"`
}

type Server struct {
	router  *chi.Mux
	addr    string
	service *analysis.Service
	logger  *slog.Logger
	srv     *http.Server
}

func NewServer(addr string, service *analysis.Service, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		addr:    addr,
		service: service,
		logger:  logger,
	}

	router.Get("/health", s.health)
	router.Post("/analyze", s.analyze)
	router.Post("/chat", s.chat)
	router.Get("/sessions/{id}", s.getSession)

	return s
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", s.addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", s.addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("API server shutting down")
		return s.srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r, false)
	if !ok {
		return
	}

	res := s.service.Analyze(r.Context(), analysis.Request{
		Text:                req.Code,
		SessionID:           req.SessionID,
		IsFollowup:          req.IsFollowup,
		ConversationContext: req.ConversationContext,
		AdditionalContext:   req.AdditionalContext,
	})
	s.respond(w, req.HTML, res)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r, true)
	if !ok {
		return
	}

	var res analysis.Result
	if len(req.ConversationContext) > 0 {
		res = s.service.Analyze(r.Context(), analysis.Request{
			Text:                req.Code,
			SessionID:           req.SessionID,
			IsFollowup:          true,
			ConversationContext: req.ConversationContext,
		})
	} else {
		res = s.service.Chat(r.Context(), req.SessionID, req.Code)
	}

	// Chat replies never carry analysis parts.
	res.Explanation, res.Fixes, res.Mode = "", "", ""
	s.respond(w, req.HTML, res)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.service.Store().Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found: "+id)
		return
	}

	exporter, err := session.NewExporter(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.WriteHeader(http.StatusOK)
	if err := exporter.Export(sess, w); err != nil {
		s.logger.Error("session export failed", "session_id", id, "error", err)
	}
}

// decode reads the request body. Code may only be empty for a follow-up that
// carries its own conversation context.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, followup bool) (AnalyzeRequest, bool) {
	var req AnalyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return req, false
	}
	followup = followup || req.IsFollowup
	if strings.TrimSpace(req.Code) == "" && !(followup && len(req.ConversationContext) > 0) {
		writeError(w, http.StatusBadRequest, "code is required")
		return req, false
	}
	return req, true
}

func (s *Server) respond(w http.ResponseWriter, withHTML bool, res analysis.Result) {
	body := AnalyzeResponse{
		Explanation:  res.Explanation,
		Fixes:        res.Fixes,
		ChatResponse: res.ChatResponse,
		SessionID:    res.SessionID,
		Mode:         res.Mode.String(),
	}
	if withHTML {
		body.ExplanationHTML = s.html(res.Explanation)
		body.FixesHTML = s.html(res.Fixes)
		body.ChatResponseHTML = s.html(res.ChatResponse)
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) html(markdown string) string {
	if markdown == "" {
		return ""
	}
	out, err := render.HTML(markdown)
	if err != nil {
		s.logger.Warn("markdown render failed", "error", err)
		return ""
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
