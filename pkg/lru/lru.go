// Package lru provides a fixed-capacity least-recently-used cache.
package lru

import (
	"sync"

	"github.com/tidwall/tinylru"
)

// DefaultCapacity is the capacity used when New is given a non-positive size.
const DefaultCapacity = 5000

// Cache is a typed LRU map. Get and Set promote, Has does not.
// Capacity never grows after construction.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	list     tinylru.LRU
}

// New creates an empty cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache[K, V]{capacity: capacity}
	c.list.Resize(capacity)
	return c
}

// Get returns the value stored for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	v, ok := c.list.Get(key)
	if !ok {
		return zero, false
	}
	return v.(V), true
}

// Set inserts or updates key. When the cache is full and key is new,
// the least recently used entry is evicted first.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list.Set(key, value)
}

// Has reports whether key is present without touching its recency.
func (c *Cache[K, V]) Has(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Contains(key)
}

// Clear drops every entry. The capacity is kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = tinylru.LRU{}
	c.list.Resize(c.capacity)
}

// Len returns the number of stored entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Len()
}

// Cap returns the fixed capacity.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}
