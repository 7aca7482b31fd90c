// Package cache provides a generic LRU cache.
//
// Cache[K, V] is a thread-safe cache with a fixed capacity and strict
// least-recently-used eviction. It counts hits, misses and evictions so
// callers can report how well memoization works.
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// # Thread Safety
//
// Cache is safe for concurrent use. It must not be copied after creation
// (it contains a mutex).
package cache
