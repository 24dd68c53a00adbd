// Package webhookstub is a local stand-in for the automation webhook the
// backend relays chat messages to. It serves the documented contract
// (POST {message, history, userContext} -> {"reply": ...}) and can simulate
// the known failure modes of the hosted automation: empty 200 bodies,
// error statuses and slow responses.
package webhookstub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Config struct {
	// Reply is the canned reply text.
	Reply string

	// Status overrides the response status code (default 200).
	Status int

	// EmptyBody simulates the automation responding 200 with no body at all.
	EmptyBody bool

	// Delay is applied before responding, to exercise client timeouts.
	Delay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Reply:  "Take a short walk, breathe slowly, and drink a glass of water.",
		Status: http.StatusOK,
	}
}

type Server struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Server {
	if cfg.Status == 0 {
		cfg.Status = http.StatusOK
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{cfg: cfg, log: log}
}

// Handler returns the stub's HTTP handler. Any POST path is accepted so the
// stub can stand in for arbitrary webhook paths (e.g. /webhook/mindio-chat).
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/*", s.handleChat)

	return r
}

type chatRequest struct {
	Message     string `json:"message"`
	History     []any  `json:"history"`
	UserContext string `json:"userContext"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Delay > 0 {
		time.Sleep(s.cfg.Delay)
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return
	}

	s.log.Info("webhookstub.request",
		"path", r.URL.Path,
		"probe_id", r.Header.Get("X-Probe-Id"),
		"message_len", len(req.Message),
		"history_len", len(req.History),
		"has_context", req.UserContext != "",
	)

	if s.cfg.EmptyBody {
		// The real automation sometimes answers 200 with zero bytes; that is
		// exactly what downstream diagnostics need to observe.
		w.WriteHeader(s.cfg.Status)
		return
	}

	if s.cfg.Status >= 400 {
		respondJSON(w, s.cfg.Status, map[string]string{"error": "simulated webhook failure"})
		return
	}

	respondJSON(w, s.cfg.Status, map[string]string{"reply": s.cfg.Reply})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
