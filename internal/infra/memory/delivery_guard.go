package memory

import (
	"context"
	"sync"
	"time"

	"ai-chat-bridge/internal/domain/ports/repository"
)

var _ repository.DeliveryGuard = (*DeliveryGuard)(nil)

// DeliveryGuard is the single-process fallback used when Redis is not configured.
type DeliveryGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time // id -> expiry
	now  func() time.Time
}

func NewDeliveryGuard() *DeliveryGuard {
	return &DeliveryGuard{seen: make(map[string]time.Time), now: time.Now}
}

func (g *DeliveryGuard) FirstSeen(_ context.Context, id string, ttl time.Duration) (bool, error) {
	if id == "" {
		return true, nil
	}
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	if exp, ok := g.seen[id]; ok && now.Before(exp) {
		return false, nil
	}
	g.seen[id] = now.Add(ttl)
	if len(g.seen) > 4096 {
		for k, exp := range g.seen {
			if !now.Before(exp) {
				delete(g.seen, k)
			}
		}
	}
	return true, nil
}
