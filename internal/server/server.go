package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/db"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/store"
	"portfolio-backend/internal/types"
)

// Answerer produces the assistant's reply to a question given prior turns.
type Answerer interface {
	Answer(ctx context.Context, question string, history []store.Message) (string, error)
}

// Server is the local assistant endpoint the chat widget talks to.
type Server struct {
	router    *chi.Mux
	store     *store.MemoryStore
	assistant Answerer
	archive   store.SubmissionArchive
	database  *db.DB
	cfg       config.Config
	now       func() time.Time
}

// NewServer wires the routes. database may be nil when no DB_URL is set.
func NewServer(cfg config.Config, assistant Answerer, archive store.SubmissionArchive, database *db.DB) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:    r,
		store:     store.NewMemoryStore(cfg.MaxSessionHistory, CookieMaxAge),
		assistant: assistant,
		archive:   archive,
		database:  database,
		cfg:       cfg,
		now:       time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.BearerToken(s.cfg.AssistantToken))
		r.Post("/api/chat", s.handleChat)
		r.Delete("/api/chat", s.handleResetChat)
	})
	s.router.Post("/api/contact", s.handleContact)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok", "sessions": strconv.Itoa(s.store.Len())}
	if s.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.database.HealthCheck(ctx); err != nil {
			slog.Warn("[health] database ping failed", "error", err)
			resp["database"] = "unavailable"
		} else {
			resp["database"] = "ok"
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		s.writeError(w, http.StatusBadRequest, "no message provided", "")
		return
	}
	sid := ensureSession(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()
	reply, err := s.assistant.Answer(ctx, message, s.store.Get(sid))
	if err != nil {
		slog.Error("[chat] assistant failed", "session", sid, "error", err)
		s.writeError(w, http.StatusInternalServerError, "assistant error", err.Error())
		return
	}

	s.store.Append(sid,
		store.Message{Role: "user", Content: message},
		store.Message{Role: "assistant", Content: reply},
	)
	s.writeJSON(w, http.StatusOK, types.ChatResponse{Reply: reply})
}

// handleResetChat forgets the caller's transcript.
func (s *Server) handleResetChat(w http.ResponseWriter, r *http.Request) {
	if sid := sessionID(r); sid != "" {
		s.store.Clear(sid)
		slog.Debug("[session] transcript cleared", "session", sid)
	}
	ClearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req types.ContactSubmission
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to process submission", err.Error())
		return
	}
	c := types.ContactSubmission{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Reason:  strings.TrimSpace(req.Reason),
		Message: strings.TrimSpace(req.Message),
	}
	if c.Name == "" || c.Email == "" || c.Reason == "" {
		s.writeError(w, http.StatusBadRequest, "Missing required fields", "")
		return
	}

	sub := store.NewSubmission(c, s.now())
	if err := s.archive.SaveSubmission(r.Context(), sub); err != nil {
		slog.Error("[contact] archive failed", "id", sub.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to process submission", err.Error())
		return
	}

	slog.Info("[contact] submission received", "id", sub.ID, "name", c.Name, "email", c.Email)
	s.writeJSON(w, http.StatusOK, types.SuccessResponse{
		Success: true,
		Message: "Thank you! Your message has been received.",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg, details string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg, Details: details})
}
