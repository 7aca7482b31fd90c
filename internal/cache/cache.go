package cache

import (
	"container/list"
	"sync"
)

// Cache is a memo table of a fixed capacity. Inserting past the capacity
// drops the entry that was read or written longest ago.
//
// Cache is safe for concurrent use and must not be copied.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*list.Element
	recency  *list.List // front is the most recently used
	capacity int

	hits      uint64
	misses    uint64
	evictions uint64
}

type item[K comparable, V any] struct {
	key   K
	value V
}

// New returns a cache holding at most capacity entries, or any number
// when capacity is 0.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*list.Element),
		recency:  list.New(),
		capacity: capacity,
	}
}

// Get returns the value stored for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.recency.MoveToFront(e)
	return e.Value.(*item[K, V]).value, true
}

// Set stores value for key, replacing any previous value.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store(key, value)
}

// store inserts or updates key and evicts down to capacity. Caller must
// hold c.mu.
func (c *Cache[K, V]) store(key K, value V) {
	if e, ok := c.entries[key]; ok {
		e.Value.(*item[K, V]).value = value
		c.recency.MoveToFront(e)
		return
	}
	c.entries[key] = c.recency.PushFront(&item[K, V]{key: key, value: value})

	for c.capacity > 0 && c.recency.Len() > c.capacity {
		oldest := c.recency.Back()
		c.recency.Remove(oldest)
		delete(c.entries, oldest.Value.(*item[K, V]).key)
		c.evictions++
	}
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries, 0 if unlimited.
	Capacity int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries dropped to stay within capacity.
	Evictions uint64
}
