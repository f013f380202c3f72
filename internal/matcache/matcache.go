// Package matcache memoizes computed operation matrices keyed by a
// column signature string. Circuit editing recomputes the same few
// column operations over and over, so a small sharded LRU pays for
// itself quickly.
package matcache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// shardCount must be a power of 2 for fast modulo via bitwise AND.
	shardCount = 8
	shardMask  = shardCount - 1

	// defaultCapacity is the per-shard entry limit when none is given.
	defaultCapacity = 64
)

// Cache is a thread-safe sharded LRU keyed by string signatures.
// Values are stored as-is; callers must not mutate them after caching.
type Cache[V any] struct {
	shards   [shardCount]*shard[V]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[V any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[V]
	lru     *lruList
}

type entry[V any] struct {
	value V
	node  *lruNode
}

// New creates a cache holding at most capacity entries per shard.
// If capacity <= 0 a small default is used.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	c := &Cache[V]{capacity: capacity}
	for i := range c.shards {
		c.shards[i] = &shard[V]{
			entries: make(map[string]*entry[V]),
			lru:     &lruList{},
		}
	}
	return c
}

func (c *Cache[V]) getShard(key string) *shard[V] {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key)) // fnv.Write never returns an error
	return c.shards[h.Sum64()&shardMask]
}

// Get retrieves a cached value by key and refreshes its LRU position.
func (c *Cache[V]) Get(key string) (V, bool) {
	s := c.getShard(key)

	s.mu.RLock()
	_, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	s.mu.Lock()
	// Re-check after acquiring the write lock; the entry may have been
	// evicted in between.
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.lru.moveToFront(e.node)
	value := e.value
	s.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// GetOrCreate returns a cached value, computing and storing it with
// create on a miss. create runs with the shard lock held so concurrent
// callers never compute the same key twice; keep it fast.
func (c *Cache[V]) GetOrCreate(key string, create func() V) V {
	s := c.getShard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.lru.moveToFront(e.node)
		c.hits.Add(1)
		return e.value
	}

	c.misses.Add(1)
	value := create()
	c.insertLocked(s, key, value)
	return value
}

// Set stores a value, replacing any existing entry for key.
func (c *Cache[V]) Set(key string, value V) {
	s := c.getShard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.value = value
		s.lru.moveToFront(e.node)
		return
	}
	c.insertLocked(s, key, value)
}

func (c *Cache[V]) insertLocked(s *shard[V], key string, value V) {
	for s.lru.len >= c.capacity {
		oldest, ok := s.lru.removeOldest()
		if !ok {
			break
		}
		delete(s.entries, oldest)
		c.evictions.Add(1)
	}
	node := s.lru.pushFront(key)
	s.entries[key] = &entry[V]{value: value, node: node}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[string]*entry[V])
		s.lru = &lruList{}
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *Cache[V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Stats is a snapshot of the cache's hit and eviction counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Stats returns the current counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
