package cache

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	PolicyFIFO     = "fifo"
	PolicyLRU      = "lru"
	PolicyDisabled = "disabled"
)

// NewCache creates a cache instance based on the eviction policy
func NewCache[K comparable, V any](name, policy string, maxSize int, log *zap.Logger) (Cache[K, V], error) {
	switch policy {
	case PolicyFIFO, "":
		log.Info("Using FIFO memory cache", zap.String("cache", name), zap.Int("max_entries", maxSize))
		return NewMemoryCache[K, V](maxSize), nil
	case PolicyLRU:
		log.Info("Using LRU memory cache", zap.String("cache", name), zap.Int("max_entries", maxSize))
		c, err := NewLRUCache[K, V](maxSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create lru cache: %w", err)
		}
		return c, nil
	case PolicyDisabled:
		log.Info("Cache disabled", zap.String("cache", name))
		return NewNoopCache[K, V](), nil
	default:
		return nil, fmt.Errorf("unknown cache policy: %s (supported: fifo, lru, disabled)", policy)
	}
}
