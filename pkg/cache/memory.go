package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Defaults for [NewMemoryCache].
const (
	DefaultMemorySize = 1024
	DefaultMemoryTTL  = 10 * time.Minute
)

// MemoryCache is a bounded in-process LRU. Entries expire after their own
// ttl or the cache-wide default, whichever comes first.
type MemoryCache struct {
	lru *expirable.LRU[string, cacheEntry]
}

// NewMemoryCache returns an LRU holding at most size entries. Non-positive
// arguments take the defaults.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultMemorySize
	}
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &MemoryCache{lru: expirable.NewLRU[string, cacheEntry](size, nil, ttl)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if entry.expired(time.Now()) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := cacheEntry{Data: append([]byte(nil), data...)}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	c.lru.Add(key, entry)
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int { return c.lru.Len() }

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
