package web

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"ai-chat-bridge/internal/domain"
)

type turnView struct {
	ID      string    `json:"id"`
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

func (s *Server) handleSessionCount(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"active_sessions": s.bridge.ActiveSessions()})
}

// sessionID accepts ids with escaped characters such as "whatsapp:%2B1555".
func sessionID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	turns, err := s.bridge.History(id)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read session"})
		return
	}
	out := make([]turnView, 0, len(turns))
	for _, t := range turns {
		out = append(out, turnView{ID: t.ID, Role: string(t.Role), Content: t.Content, At: t.At})
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id, "turns": out})
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	s.bridge.ResetSession(sessionID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	counts, err := s.bridge.UsageByRoute(r.Context())
	if err != nil {
		l := s.log.With().Err(err).Logger()
		l.Error().Msg("usage query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get usage"})
		return
	}
	byRoute := make(map[string]int64, len(counts))
	var total int64
	for route, n := range counts {
		byRoute[string(route)] = n
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "by_route": byRoute})
}
