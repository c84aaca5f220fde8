package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/domain/model"
	"ai-chat-bridge/internal/domain/ports/repository"
	"ai-chat-bridge/internal/infra/metrics"
)

var _ repository.SessionStore = (*SessionStore)(nil)

type entry struct {
	mu         sync.Mutex
	conv       *model.Conversation
	removed    bool
	lastActive atomic.Int64 // unix nanos, readable without mu
}

// SessionStore keeps conversations in process memory. The map has its own
// lock and every session has another, so one user's traffic never waits on
// another user's. Lock order is always map then session.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entry

	systemPrompt string
	idleTTL      time.Duration
	maxSessions  int
	now          func() time.Time
	log          *zerolog.Logger
}

// Option configures a SessionStore.
type Option func(*SessionStore)

// WithIdleTTL drops sessions that saw no traffic for ttl. Zero disables expiry.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *SessionStore) { s.idleTTL = ttl }
}

// WithMaxSessions caps live sessions; the least recently active one is
// dropped when a new user would exceed the cap. Zero means unlimited.
func WithMaxSessions(n int) Option {
	return func(s *SessionStore) { s.maxSessions = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) { s.now = now }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(s *SessionStore) { s.log = l }
}

func NewSessionStore(systemPrompt string, opts ...Option) *SessionStore {
	nop := zerolog.Nop()
	s := &SessionStore{
		sessions:     make(map[string]*entry),
		systemPrompt: systemPrompt,
		now:          time.Now,
		log:          &nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// with runs fn under the user's session lock. When create is false and the
// user has no session, fn is not run and with returns false.
func (s *SessionStore) with(userID string, create bool, fn func(c *model.Conversation)) bool {
	for {
		s.mu.Lock()
		e, ok := s.sessions[userID]
		if !ok {
			if !create {
				s.mu.Unlock()
				return false
			}
			now := s.now()
			e = &entry{conv: model.NewConversation(userID, s.systemPrompt, now)}
			e.lastActive.Store(now.UnixNano())
			s.sessions[userID] = e
			s.enforceCapLocked(userID)
			metrics.SetActiveSessions(len(s.sessions))
		}
		s.mu.Unlock()

		e.mu.Lock()
		if e.removed {
			// reset or expired between lookup and lock; retry on the fresh map
			e.mu.Unlock()
			continue
		}
		fn(e.conv)
		e.lastActive.Store(s.now().UnixNano())
		e.mu.Unlock()
		return true
	}
}

func (s *SessionStore) GetOrCreate(userID string) []model.Turn {
	var out []model.Turn
	s.with(userID, true, func(c *model.Conversation) { out = c.Snapshot() })
	return out
}

// Peek returns the user's turns without creating a session.
func (s *SessionStore) Peek(userID string) ([]model.Turn, bool) {
	var out []model.Turn
	ok := s.with(userID, false, func(c *model.Conversation) { out = c.Snapshot() })
	return out, ok
}

func (s *SessionStore) Append(userID string, role model.Role, content string) {
	s.with(userID, true, func(c *model.Conversation) {
		metrics.AddTurnsEvicted(c.Append(role, content, s.now()))
	})
}

func (s *SessionStore) Reset(userID string) {
	s.mu.Lock()
	e, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
	}
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	metrics.SetActiveSessions(n)
}

func (s *SessionStore) AwaitStyle(userID, question string) {
	s.with(userID, true, func(c *model.Conversation) {
		metrics.AddTurnsEvicted(c.AwaitStyle(question, s.now()))
	})
}

func (s *SessionStore) TakePending(userID string) (string, bool) {
	var (
		q  string
		ok bool
	)
	s.with(userID, false, func(c *model.Conversation) { q, ok = c.TakePending() })
	return q, ok
}

func (s *SessionStore) HasPending(userID string) bool {
	var ok bool
	s.with(userID, false, func(c *model.Conversation) { ok = c.Pending == model.PendingAwaitingStyle })
	return ok
}

func (s *SessionStore) ClearPending(userID string) {
	s.with(userID, false, func(c *model.Conversation) { c.ClearPending() })
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// enforceCapLocked drops the least recently active session other than keep.
// Caller holds s.mu.
func (s *SessionStore) enforceCapLocked(keep string) {
	if s.maxSessions <= 0 || len(s.sessions) <= s.maxSessions {
		return
	}
	var (
		oldestID string
		oldestAt int64
	)
	for id, e := range s.sessions {
		if id == keep {
			continue
		}
		if at := e.lastActive.Load(); oldestID == "" || at < oldestAt {
			oldestID, oldestAt = id, at
		}
	}
	if oldestID == "" {
		return
	}
	victim := s.sessions[oldestID]
	delete(s.sessions, oldestID)
	victim.mu.Lock()
	victim.removed = true
	victim.mu.Unlock()
	metrics.IncSessionExpired("capacity")
	s.log.Debug().Str("user_id", oldestID).Msg("session dropped at capacity")
}

// Sweep removes sessions idle for longer than the configured TTL and
// returns how many were removed.
func (s *SessionStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL).UnixNano()

	s.mu.Lock()
	var stale []*entry
	for id, e := range s.sessions {
		if e.lastActive.Load() < cutoff {
			stale = append(stale, e)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, e := range stale {
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
		metrics.IncSessionExpired("idle")
	}
	if len(stale) > 0 {
		metrics.SetActiveSessions(n)
		s.log.Debug().Int("expired", len(stale)).Int("remaining", n).Msg("idle sessions swept")
	}
	return len(stale)
}

// Run sweeps idle sessions every interval until ctx is done. It returns
// immediately when no idle TTL is configured.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if s.idleTTL <= 0 {
		return
	}
	if interval <= 0 {
		interval = s.idleTTL / 2
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}
