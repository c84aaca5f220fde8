package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"ai-chat-bridge/internal/domain"
	"ai-chat-bridge/internal/domain/model"
	"ai-chat-bridge/internal/domain/ports/repository"
)

var _ repository.UsageRepository = (*usageRepo)(nil)

type usageRepo struct {
	db querier
}

func NewUsageRepo(pool *pgxpool.Pool) repository.UsageRepository {
	return &usageRepo{db: pool}
}

func (r *usageRepo) Save(ctx context.Context, ev *model.UsageEvent) error {
	if ev == nil || ev.ID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO usage_events (id, channel, sender, route, style, has_media, failed, latency_ms, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO NOTHING`

	_, err := r.db.Exec(ctx, q,
		ev.ID, string(ev.Channel), ev.Sender, string(ev.Route), ev.Style,
		ev.HasMedia, ev.Failed, ev.LatencyMs, ev.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

func (r *usageRepo) CountByRoute(ctx context.Context) (map[model.Route]int64, error) {
	const q = `SELECT route, COUNT(*) FROM usage_events GROUP BY route`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count usage events: %w", err)
	}
	defer rows.Close()

	out := make(map[model.Route]int64)
	for rows.Next() {
		var (
			route string
			n     int64
		)
		if err := rows.Scan(&route, &n); err != nil {
			return nil, fmt.Errorf("scan usage count: %w", err)
		}
		out[model.Route(route)] = n
	}
	return out, rows.Err()
}
