// Package cache holds rendered pages for a short, fixed interval.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// PageCache stores rendered response bodies by key.
type PageCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte)
	Clear()
}

// MemoryPageCache is a process-local PageCache whose entries expire after a fixed TTL.
type MemoryPageCache struct {
	store *gocache.Cache
}

// NewMemoryPageCache creates a cache whose entries live for ttl.
func NewMemoryPageCache(ttl time.Duration) *MemoryPageCache {
	return &MemoryPageCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *MemoryPageCache) Get(key string) ([]byte, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}

func (c *MemoryPageCache) Set(key string, body []byte) {
	stored := make([]byte, len(body))
	copy(stored, body)
	c.store.Set(key, stored, gocache.DefaultExpiration)
}

// Clear drops every entry.
func (c *MemoryPageCache) Clear() {
	c.store.Flush()
}
