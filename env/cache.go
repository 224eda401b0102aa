package env

import (
	"fmt"
	"sync"
)

// Cache is the process-wide collection of per-shard environments, one
// per CPU shard (region.CPUShardingSubspace's n). Lookup by shard index
// takes only a read lock, so concurrent lookups do not block each
// other; Put takes the write lock.
type Cache struct {
	mu     sync.RWMutex
	shards map[int]*Shard
}

func NewCache() *Cache {
	return &Cache{shards: make(map[int]*Shard)}
}

// Put registers the environment for shard i. Called once per shard at
// startup, before any request is dispatched.
func (c *Cache) Put(i int, s *Shard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shards[i] = s
}

// Get returns the environment pinned to shard i.
func (c *Cache) Get(i int) (*Shard, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.shards[i]
	if !ok {
		return nil, fmt.Errorf("env: no environment registered for shard %d", i)
	}
	return s, nil
}

// PulseAll fires every shard's interrupt signal. Used on shutdown to
// unwind every in-flight request.
func (c *Cache) PulseAll() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.shards {
		s.Pulse()
	}
}
