// File: internal/infra/redis/delivery_guard.go
package redis

import (
	"context"
	"time"

	"ai-chat-bridge/internal/domain/ports/repository"
)

var _ repository.DeliveryGuard = (*DeliveryGuard)(nil)

const dedupPrefix = "bridge:delivered:"

// DeliveryGuard marks provider message IDs with SET NX so that every
// replica agrees on which delivery of a message is the first.
type DeliveryGuard struct {
	cli RedisClient
}

func NewDeliveryGuard(c RedisClient) *DeliveryGuard {
	return &DeliveryGuard{cli: c}
}

func (g *DeliveryGuard) FirstSeen(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if id == "" {
		return true, nil
	}
	return g.cli.SetNX(ctx, dedupPrefix+id, time.Now().Unix(), ttl)
}
