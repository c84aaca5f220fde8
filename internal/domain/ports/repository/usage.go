package repository

import (
	"context"

	"ai-chat-bridge/internal/domain/model"
)

// UsageRepository records handled messages for reporting. Bodies are never stored.
type UsageRepository interface {
	Save(ctx context.Context, ev *model.UsageEvent) error
	CountByRoute(ctx context.Context) (map[model.Route]int64, error)
}
