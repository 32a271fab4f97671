package cache

import (
	"context"
	"time"
)

// Cache is a keyed store with per-key TTL shared by every service instance.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// AddMember adds member to the set at key and refreshes the set TTL.
	AddMember(ctx context.Context, key string, member string, ttl time.Duration) error
	Members(ctx context.Context, key string) ([]string, error)
}
