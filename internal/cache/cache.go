// Package cache provides a bounded in-memory cache with per-entry expiry.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize bounds the number of entries when NewMemory gets size <= 0.
const DefaultSize = 64

// Memory is a thread-safe LRU cache. Entries expire ttl after they were
// set; expired entries are swept in the background.
type Memory[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewMemory creates a cache holding at most size entries. A ttl of zero
// disables expiry.
func NewMemory[V any](size int, ttl time.Duration) *Memory[V] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Memory[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

// Get returns the value stored under key, if present and not expired.
func (c *Memory[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Set stores value under key, replacing any previous entry and renewing
// its expiry.
func (c *Memory[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

// Invalidate removes an entry from the cache
func (c *Memory[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// InvalidateAll removes all entries from the cache
func (c *Memory[V]) InvalidateAll() {
	c.lru.Purge()
}

// Len returns the number of entries, expired ones included until swept.
func (c *Memory[V]) Len() int {
	return c.lru.Len()
}
