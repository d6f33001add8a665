package engine

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("channel_scan", "indie games")
		k2 := CacheKey("channel_scan", "indie games")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("channel_scan", "indie games")
		k2 := CacheKey("channel_scan", "cooking")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:3] != "cs:" {
			t.Errorf("expected cs: prefix, got %q", k[:3])
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	InitCache(1*time.Minute, 100, 5*time.Minute)

	key := CacheKey("test", "round-trip")

	// Miss
	if _, ok := CacheGet(key); ok {
		t.Error("expected cache miss on empty cache")
	}

	// Set then hit
	CacheSet(key, []byte(`{"answer":"hello"}`))
	got, ok := CacheGet(key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if string(got) != `{"answer":"hello"}` {
		t.Errorf("got %q", got)
	}
}

func TestCacheExpiration(t *testing.T) {
	InitCache(1*time.Millisecond, 100, 5*time.Minute)

	key := CacheKey("test", "expiry")
	CacheSet(key, []byte("temp"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := CacheGet(key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache(1*time.Minute, 3, 5*time.Minute)

	for i := 0; i < 5; i++ {
		CacheSet(CacheKey("evict", fmt.Sprintf("item-%d", i)), []byte(fmt.Sprintf("v%d", i)))
	}

	count := 0
	toolCache.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count > 3 {
		t.Errorf("expected at most 3 entries after eviction, got %d", count)
	}
}

func TestCacheStats(t *testing.T) {
	InitCache(1*time.Minute, 100, 5*time.Minute)
	cacheHits.Store(0)
	cacheMisses.Store(0)

	key := CacheKey("stats", "test")

	CacheGet(key)
	_, misses := CacheStats()
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}

	CacheSet(key, []byte("x"))
	CacheGet(key)

	hits, misses := CacheStats()
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}

func TestCacheReinitStopsCleanup(t *testing.T) {
	InitCache(1*time.Minute, 10, 1*time.Minute)
	first := toolCache

	InitCache(1*time.Minute, 10, 1*time.Minute)
	select {
	case <-first.stop:
	default:
		t.Error("expected re-init to stop the previous cleanup loop")
	}
	if toolCache == first {
		t.Error("expected a fresh cache after re-init")
	}
}

func TestCacheUninitialized(t *testing.T) {
	saved := toolCache
	toolCache = nil
	defer func() { toolCache = saved }()

	if _, ok := CacheGet("cs:nope"); ok {
		t.Error("expected miss with no cache")
	}
	CacheSet("cs:nope", []byte("ignored")) // must not panic
}
