package cache

import (
	"container/list"
	"sync"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// MemoryCache implements an in-memory cache with insertion-order (FIFO) eviction.
// Reads do not reorder entries, so the oldest inserted entry is always the next
// one evicted regardless of how often it is read.
type MemoryCache[K comparable, V any] struct {
	mu        sync.Mutex
	maxSize   int
	items     map[K]*list.Element
	fifoList  *list.List
	hits      uint64
	misses    uint64
	evictions uint64
}

// NewMemoryCache creates a new in-memory FIFO cache holding at most maxSize entries
func NewMemoryCache[K comparable, V any](maxSize int) *MemoryCache[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &MemoryCache[K, V]{
		maxSize:  maxSize,
		items:    make(map[K]*list.Element),
		fifoList: list.New(),
	}
}

func (c *MemoryCache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

func (c *MemoryCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	return elem.Value.(*entry[K, V]).value, true
}

func (c *MemoryCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; ok {
		return
	}

	// Evict before inserting so the cache never exceeds maxSize
	for c.fifoList.Len() >= c.maxSize {
		oldest := c.fifoList.Front()
		if oldest == nil {
			break
		}
		delete(c.items, oldest.Value.(*entry[K, V]).key)
		c.fifoList.Remove(oldest)
		c.evictions++
	}

	ent := &entry[K, V]{key: key, value: value}
	c.items[key] = c.fifoList.PushBack(ent)
}

func (c *MemoryCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fifoList.Len()
}

func (c *MemoryCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.fifoList.Len())
	for e := c.fifoList.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*entry[K, V]).key)
	}
	return keys
}

func (c *MemoryCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element)
	c.fifoList = list.New()
}

func (c *MemoryCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Policy:    PolicyFIFO,
		Size:      c.fifoList.Len(),
		Capacity:  c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
