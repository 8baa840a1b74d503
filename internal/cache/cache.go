// Melodeon - DAAP Media Library Server
// Copyright 2026 Melodeon Authors
// SPDX-License-Identifier: MIT
// https://github.com/melodeon-dev/melodeon

// Package cache provides the content-addressed response cache fronting the
// DAAP object endpoints. Keys hash the endpoint, path and the semi-constant
// query arguments; since revision-number and delta are part of the key, a
// new library revision misses naturally.
package cache

import (
	"sync"
	"time"

	"github.com/melodeon-dev/melodeon/internal/metrics"
)

// entry is one cached response in the doubly-linked recency list.
type entry struct {
	key       string
	value     []byte
	prev      *entry
	next      *entry
	expiresAt time.Time
}

// ResponseCache is a thread-safe LRU cache with TTL for encoded DMAP
// responses. Get, Put and eviction are O(1): a hashmap for lookup, a
// sentinel-node doubly-linked list for recency order.
type ResponseCache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	items map[string]*entry

	// head.next is the most recently used, tail.prev the least.
	head *entry
	tail *entry

	hits   int64
	misses int64
}

// NewResponseCache creates a cache holding at most capacity responses, each
// valid for ttl. Zero values select the defaults of 1024 entries and 6
// hours; invalidation rides on the revision changing the key.
func NewResponseCache(capacity int, ttl time.Duration) *ResponseCache {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}

	c := &ResponseCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the cached response and true on a hit. Hits refresh recency;
// expired entries are removed lazily.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		metrics.CacheMisses.Inc()
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		c.misses++
		metrics.CacheMisses.Inc()
		return nil, false
	}

	c.moveToFront(e)
	c.hits++
	metrics.CacheHits.Inc()
	return e.value, true
}

// Put stores a response, evicting the least recently used entry when the
// cache is full.
func (c *ResponseCache) Put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
	metrics.CacheEntries.Set(float64(len(c.items)))
}

// Remove drops one entry. Returns true when it was present.
func (c *ResponseCache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if ok {
		c.removeEntry(e)
	}
	return ok
}

// Clear drops every entry.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
	metrics.CacheEntries.Set(0)
}

// Len returns the number of cached responses.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit/miss counters and the current size.
func (c *ResponseCache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// List maintenance; callers hold mu.

func (c *ResponseCache) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *ResponseCache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *ResponseCache) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
	metrics.CacheEntries.Set(float64(len(c.items)))
}

func (c *ResponseCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
