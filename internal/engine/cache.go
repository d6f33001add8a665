package engine

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// In-memory TTL cache for tool responses. Single tier: results only need to
// survive repeated tool calls within one server session, nothing persists
// across runs.
var toolCache *memCache

var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type memCache struct {
	entries         sync.Map // key → *cacheEntry
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stop            chan struct{}
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InitCache sets up the tool-response cache. Call after Init(). Re-init stops
// the previous cache's cleanup loop before replacing it.
func InitCache(ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	if prev := toolCache; prev != nil {
		close(prev.stop)
	}
	c := &memCache{
		ttl:             ttl,
		maxEntries:      maxEntries,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}
	toolCache = c
	slog.Info("cache initialized", slog.Duration("ttl", ttl), slog.Int("max_entries", maxEntries))
	go c.cleanupLoop()
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("cs:%x", hash[:12])
}

// CacheGet returns the cached bytes for key, if present and fresh.
func CacheGet(key string) ([]byte, bool) {
	if toolCache == nil {
		cacheMisses.Add(1)
		return nil, false
	}
	if val, ok := toolCache.entries.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			cacheHits.Add(1)
			return entry.data, true
		}
		toolCache.entries.Delete(key)
	}
	cacheMisses.Add(1)
	return nil, false
}

// CacheSet stores data under key for the configured TTL.
func CacheSet(key string, data []byte) {
	if toolCache == nil {
		return
	}
	toolCache.evictIfNeeded()
	toolCache.entries.Store(key, &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(toolCache.ttl),
	})
}

// CacheStats returns current hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// evictIfNeeded removes entries when the cache exceeds maxEntries: expired
// entries first, then the oldest until under the limit.
func (c *memCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}
	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.entries.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.entries.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(c.ttl + time.Hour)
		c.entries.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && entry.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.entries.Delete(oldestKey)
		count--
	}
}

func (c *memCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.entries.Range(func(key, val any) bool {
				if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}
