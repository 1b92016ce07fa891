// Copyright 2025 Agentwork, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pagehound

import (
	"sync"
	"time"
)

const (
	// DefaultCacheTTL is how long a cached fetch stays servable.
	DefaultCacheTTL = time.Hour
	// DefaultCacheCapacity bounds the number of cached fetches.
	DefaultCacheCapacity = 1000
)

type cacheEntry struct {
	payload  *FetchResult
	storedAt time.Time
}

// CacheStore is a bounded, time-boxed in-memory store for fetched content.
// Expiry is lazy: entries past the TTL are purged when touched, or in bulk
// via SweepExpired. When an insert would exceed capacity the entry with
// the smallest stored timestamp is evicted (oldest by insertion, not by
// last access; ties resolved by insertion order).
//
// All operations are safe for concurrent use.
type CacheStore struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	order    []string // insertion order, for deterministic eviction
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// CacheStats is a point-in-time snapshot of the cache.
type CacheStats struct {
	Size     int           `json:"size"`
	Capacity int           `json:"capacity"`
	TTL      time.Duration `json:"ttl"`
}

// NewCacheStore creates a cache with the given capacity and TTL.
func NewCacheStore(capacity int, ttl time.Duration) (*CacheStore, error) {
	if capacity <= 0 {
		return nil, &ConfigError{Param: "capacity", Reason: "must be positive"}
	}
	if ttl <= 0 {
		return nil, &ConfigError{Param: "ttl", Reason: "must be positive"}
	}
	return &CacheStore{
		entries:  make(map[string]*cacheEntry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Get returns a copy of the cached result for key. The second return is
// false when the key is absent or its entry has expired; expired entries
// are purged on access.
func (c *CacheStore) Get(key string) (*FetchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.deleteLocked(key)
		logger.Debug().Str("key", key).Msg("cache entry expired")
		return nil, false
	}
	return entry.payload.Clone(), true
}

// Set stores a copy of value under key, evicting the oldest entry first if
// the cache is full.
func (c *CacheStore) Set(key string, value *FetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		existing.payload = value.Clone()
		existing.storedAt = c.now()
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = &cacheEntry{payload: value.Clone(), storedAt: c.now()}
	c.order = append(c.order, key)
}

// Remove deletes key from the cache, reporting whether it was present.
func (c *CacheStore) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	c.deleteLocked(key)
	return true
}

// Clear drops every cached entry.
func (c *CacheStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

// SweepExpired proactively removes every expired entry and returns how
// many were dropped.
func (c *CacheStore) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	// Walk the order slice rather than the map so repeated sweeps behave
	// identically.
	for _, key := range append([]string(nil), c.order...) {
		if entry, ok := c.entries[key]; ok && now.Sub(entry.storedAt) > c.ttl {
			c.deleteLocked(key)
			removed++
		}
	}
	if removed > 0 {
		logger.Debug().Int("removed", removed).Msg("swept expired cache entries")
	}
	return removed
}

// Stats returns a snapshot of the cache dimensions.
func (c *CacheStore) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Size: len(c.entries), Capacity: c.capacity, TTL: c.ttl}
}

// evictOldestLocked removes exactly one entry: the one with the smallest
// stored timestamp. Ties go to the earliest-inserted key, which the order
// slice yields first.
func (c *CacheStore) evictOldestLocked() {
	oldestKey := ""
	var oldestAt time.Time
	for _, key := range c.order {
		entry, ok := c.entries[key]
		if !ok {
			continue
		}
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
		}
	}
	if oldestKey != "" {
		c.deleteLocked(oldestKey)
		logger.Debug().Str("key", oldestKey).Msg("cache full, evicted oldest entry")
	}
}

func (c *CacheStore) deleteLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
