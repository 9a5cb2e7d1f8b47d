package cache

import (
	"context"
	"sync"

	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// MemoryCache keeps documents in process memory. Useful for tests and for
// running without any storage infrastructure; contents are lost on exit.
type MemoryCache struct {
	mu     sync.RWMutex
	tables map[model.Namespace]map[string]string
}

func NewMemory() *MemoryCache {
	return &MemoryCache{
		tables: map[model.Namespace]map[string]string{
			model.NamespaceSearchResults: {},
			model.NamespaceArticles:      {},
		},
	}
}

func (c *MemoryCache) Get(_ context.Context, ns model.Namespace, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.tables[ns][key]
	return value, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, ns model.Namespace, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	table, ok := c.tables[ns]
	if !ok {
		table = map[string]string{}
		c.tables[ns] = table
	}
	if _, exists := table[key]; exists {
		return nil
	}
	table[key] = value
	return nil
}

var _ model.DocumentCache = (*MemoryCache)(nil)
