package cache

// Cache is a bounded key/value store shared by concurrent requests.
// Entries are never updated in place: setting a key that is already present
// keeps the existing value.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Has(key K) bool // Check presence without counting a hit or miss
	Len() int
	Keys() []K // Oldest first
	Clear()
	Stats() Stats
}

type Stats struct {
	Policy    string `json:"policy"`
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}
