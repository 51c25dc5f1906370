package store

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"copy-check/api/internal/copycheck/types"
)

const (
	DefaultCacheSize = 512
	DefaultCacheTTL  = time.Hour
)

// MemoryCache keeps model candidates in a size-bounded LRU whose entries
// expire after ttl.
type MemoryCache struct {
	lru *expirable.LRU[string, *types.Output]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{lru: expirable.NewLRU[string, *types.Output](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*types.Output, bool, error) {
	out, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return out.Clone(), true, nil
}

func (c *MemoryCache) Put(_ context.Context, key, _, _ string, out *types.Output) error {
	c.lru.Add(key, out.Clone())
	return nil
}

func (c *MemoryCache) Len() int { return c.lru.Len() }
