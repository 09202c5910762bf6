package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache evicts the least recently read entry instead of the oldest inserted one.
// It is opt-in via the "lru" policy.
type LRUCache[K comparable, V any] struct {
	lru       *lru.Cache[K, V]
	maxSize   int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

func NewLRUCache[K comparable, V any](maxSize int) (*LRUCache[K, V], error) {
	if maxSize < 1 {
		maxSize = 1
	}

	c := &LRUCache[K, V]{maxSize: maxSize}
	l, err := lru.NewWithEvict[K, V](maxSize, func(K, V) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

func (c *LRUCache[K, V]) Has(key K) bool {
	return c.lru.Contains(key)
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	value, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return value, ok
}

func (c *LRUCache[K, V]) Set(key K, value V) {
	c.lru.ContainsOrAdd(key, value)
}

func (c *LRUCache[K, V]) Len() int {
	return c.lru.Len()
}

func (c *LRUCache[K, V]) Keys() []K {
	return c.lru.Keys()
}

func (c *LRUCache[K, V]) Clear() {
	// Purge reports every entry through the eviction callback
	evicted := c.evictions.Load()
	c.lru.Purge()
	c.evictions.Store(evicted)
}

func (c *LRUCache[K, V]) Stats() Stats {
	return Stats{
		Policy:    PolicyLRU,
		Size:      c.lru.Len(),
		Capacity:  c.maxSize,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
