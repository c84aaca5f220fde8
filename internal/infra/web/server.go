package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/domain/model"
	"ai-chat-bridge/internal/infra/api"
	"ai-chat-bridge/internal/infra/metrics"
)

// Bridge is the application surface the HTTP layer needs.
type Bridge interface {
	Deliver(ctx context.Context, msg model.Inbound) (model.Reply, error)
	History(userID string) ([]model.Turn, error)
	ResetSession(userID string)
	ActiveSessions() int
	UsageByRoute(ctx context.Context) (map[model.Route]int64, error)
}

// Info is what GET / reports about the running bot.
type Info struct {
	Bot      string `json:"bot"`
	Creator  string `json:"creator"`
	Version  string `json:"version"`
	Provider string `json:"provider"`
}

type Server struct {
	bridge      Bridge
	info        Info
	webhookPath string
	timeout     time.Duration
	auth        *AuthManager // nil disables /admin
	log         *zerolog.Logger
}

func NewServer(bridge Bridge, info Info, webhookPath string, timeout time.Duration, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{
		bridge:      bridge,
		info:        info,
		webhookPath: webhookPath,
		timeout:     timeout,
		auth:        auth,
		log:         logger,
	}
}

// Routes builds the full HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		api.TraceID(),
		api.RequestLog(s.log, "/healthz", "/metrics"),
		api.Recover(s.log),
	)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.With(api.Timeout(s.timeout)).Post(s.webhookPath, s.handleTwilioWebhook)

	if s.auth != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.auth.Require)
			r.Get("/sessions", s.handleSessionCount)
			r.Get("/sessions/{id}", s.handleSessionGet)
			r.Delete("/sessions/{id}", s.handleSessionReset)
			r.Get("/usage", s.handleUsage)
		})
	}
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Info
		Status string `json:"status"`
	}{Info: s.info, Status: "running"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
