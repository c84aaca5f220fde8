package repository

import (
	"context"
	"time"
)

// DeliveryGuard remembers provider message IDs so that webhook retries are
// answered only once.
type DeliveryGuard interface {
	// FirstSeen returns true the first time id is observed within ttl.
	FirstSeen(ctx context.Context, id string, ttl time.Duration) (bool, error)
}
