package application

import (
	"context"

	"ai-chat-bridge/internal/domain/model"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----

type RouterIface interface {
	Handle(ctx context.Context, msg model.Inbound) model.Reply
}

// SessionAdmin is the operator view of the session store.
type SessionAdmin interface {
	Peek(userID string) ([]model.Turn, bool)
	Reset(userID string)
	Len() int
}
