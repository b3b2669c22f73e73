package blocks

import (
	"context"
	"sync"

	"pairScope/internal/model"
)

// Cache stores resolved timestamp to block mappings. Resolved mappings never change,
// so entries do not expire.
type Cache interface {
	GetBlocks(ctx context.Context, timestamps []int64) (map[int64]uint64, error)
	PutBlocks(ctx context.Context, blocks []model.Block) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[int64]uint64
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[int64]uint64)}
}

func (c *MemoryCache) GetBlocks(_ context.Context, timestamps []int64) (map[int64]uint64, error) {
	out := make(map[int64]uint64, len(timestamps))
	c.mu.RLock()
	for _, ts := range timestamps {
		if number, ok := c.data[ts]; ok {
			out[ts] = number
		}
	}
	c.mu.RUnlock()
	return out, nil
}

func (c *MemoryCache) PutBlocks(_ context.Context, blocks []model.Block) error {
	c.mu.Lock()
	for _, b := range blocks {
		c.data[b.Timestamp] = b.Number
	}
	c.mu.Unlock()
	return nil
}
