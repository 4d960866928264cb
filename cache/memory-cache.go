package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process local Cache for single instance deployments
// (CACHE_BACKEND=memory).
type MemoryCache struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	generations map[string]int64
	epoch       int64
	now         func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:     make(map[string]memoryEntry),
		generations: make(map[string]int64),
		now:         time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

func (c *MemoryCache) Generation(_ context.Context, departmentID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return generationToken(strconv.FormatInt(c.generations[departmentID], 10), strconv.FormatInt(c.epoch, 10)), nil
}

func (c *MemoryCache) Bump(_ context.Context, departmentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if departmentID == "" {
		c.epoch++
		c.entries = make(map[string]memoryEntry)
		return nil
	}
	c.generations[departmentID]++
	return nil
}
