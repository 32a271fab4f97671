package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryItem struct {
	value     string
	members   map[string]struct{}
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// MemoryCache is a mutex-guarded Cache for single-instance deployments and tests.
// Expired keys are evicted lazily on access.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// WithClock swaps the time source.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

// lookup must be called with mu held.
func (c *MemoryCache) lookup(key string) (memoryItem, bool) {
	item, ok := c.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if item.expired(c.now()) {
		delete(c.items, key)
		return memoryItem{}, false
	}
	return item, true
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.lookup(key)
	if !ok {
		return "", false, nil
	}
	return item.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = memoryItem{value: value, expiresAt: c.deadline(ttl)}
	return nil
}

func (c *MemoryCache) SetNX(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lookup(key); ok {
		return false, nil
	}
	c.items[key] = memoryItem{value: value, expiresAt: c.deadline(ttl)}
	return true, nil
}

func (c *MemoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

func (c *MemoryCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.lookup(key)
	if !ok {
		return nil
	}
	item.expiresAt = c.deadline(ttl)
	c.items[key] = item
	return nil
}

func (c *MemoryCache) AddMember(_ context.Context, key string, member string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.lookup(key)
	if !ok || item.members == nil {
		item = memoryItem{members: make(map[string]struct{})}
	}
	item.members[member] = struct{}{}
	item.expiresAt = c.deadline(ttl)
	c.items[key] = item
	return nil
}

func (c *MemoryCache) Members(_ context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.lookup(key)
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(item.members))
	for m := range item.members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}
