package repository

import "ai-chat-bridge/internal/domain/model"

// SessionStore owns the per-user bounded conversation windows. All methods
// are safe for concurrent use and never fail.
type SessionStore interface {
	// GetOrCreate returns a copy of the user's turns, creating the session
	// seeded with the system turn if absent.
	GetOrCreate(userID string) []model.Turn
	// Append adds a turn, evicting the oldest non-system turn on overflow.
	Append(userID string, role model.Role, content string)
	// Reset drops the session. Absence is not an error.
	Reset(userID string)

	// AwaitStyle records question as the latest user turn and parks it
	// until a style code arrives.
	AwaitStyle(userID, question string)
	// TakePending consumes the parked question, if any.
	TakePending(userID string) (string, bool)
	// HasPending reports whether a question is parked.
	HasPending(userID string) bool
	// ClearPending drops a parked question without answering it.
	ClearPending(userID string)

	// Len reports the number of live sessions.
	Len() int
}
