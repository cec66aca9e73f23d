package cache

import (
	"context"
	"time"
)

// Store is the shared key-value interface used for chat history
// persistence and short-lived telemetry caching. A zero TTL means the
// entry never expires.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
