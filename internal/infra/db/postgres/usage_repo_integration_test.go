//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-bridge/internal/domain/model"
)

func TestUsageRepo_CountByRoute_Integration(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewUsageRepo(testPool)

	events := []*model.UsageEvent{
		{ID: "a", Channel: model.ChannelWhatsApp, Sender: "***", Route: model.RouteGreeting, Style: "none"},
		{ID: "b", Channel: model.ChannelWhatsApp, Sender: "***", Route: model.RouteFreeform, Style: "none"},
		{ID: "c", Channel: model.ChannelTelegram, Sender: "***", Route: model.RouteFreeform, Style: "none", Failed: true},
	}
	for _, ev := range events {
		ev.OccurredAt = time.Now().UTC()
		require.NoError(t, repo.Save(ctx, ev))
	}
	// same id again is ignored
	require.NoError(t, repo.Save(ctx, events[0]))

	counts, err := repo.CountByRoute(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.RouteGreeting])
	assert.Equal(t, int64(2), counts[model.RouteFreeform])
}
