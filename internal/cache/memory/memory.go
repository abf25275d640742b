package memory

import (
	"context"
	"sync"

	"sticker-processor/internal/cache"
	"sticker-processor/internal/domain"
)

// Cache is an in-process fingerprint cache. Dedup then only holds within a
// single worker lifetime, which is fine for local runs and tests.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]domain.ContentURI
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]domain.ContentURI),
	}
}

func (c *Cache) Get(_ context.Context, fingerprint string) (domain.ContentURI, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	uri, ok := c.entries[fingerprint]
	if !ok {
		return "", cache.ErrNotFound
	}
	return uri, nil
}

func (c *Cache) Add(_ context.Context, fingerprint string, uri domain.ContentURI) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = uri
	return nil
}
