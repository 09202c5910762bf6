package cache

import "sync/atomic"

type NoopCache[K comparable, V any] struct {
	misses atomic.Uint64
}

func NewNoopCache[K comparable, V any]() *NoopCache[K, V] {
	return &NoopCache[K, V]{}
}

func (c *NoopCache[K, V]) Get(key K) (V, bool) {
	c.misses.Add(1)
	var zero V
	return zero, false
}

func (c *NoopCache[K, V]) Set(key K, value V) {
}

func (c *NoopCache[K, V]) Has(key K) bool {
	return false
}

func (c *NoopCache[K, V]) Len() int {
	return 0
}

func (c *NoopCache[K, V]) Keys() []K {
	return nil
}

func (c *NoopCache[K, V]) Clear() {
}

func (c *NoopCache[K, V]) Stats() Stats {
	return Stats{Policy: PolicyDisabled, Misses: c.misses.Load()}
}
