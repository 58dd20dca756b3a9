package store

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := NewCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCacheOpenFailsOnBadPath(t *testing.T) {
	if _, err := NewCache(filepath.Join(t.TempDir(), "missing", "cache.db")); err == nil {
		t.Fatalf("expected error for unwritable cache path")
	}
}

func TestCachePutGet(t *testing.T) {
	cache := openTestCache(t)

	durations := map[string]int64{"Walk": 185, "Run": 42}
	if err := cache.Put(CacheKeyDurations, durations); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got map[string]int64
	found, err := cache.Get(CacheKeyDurations, &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatalf("expected key to be found")
	}
	if got["Walk"] != 185 || got["Run"] != 42 {
		t.Fatalf("got %v, want Walk=185 Run=42", got)
	}
}

func TestCacheGetMissing(t *testing.T) {
	cache := openTestCache(t)

	var out map[string]int64
	found, err := cache.Get("never_written", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatalf("missing key reported as found")
	}
}

func TestCachePutOverwrites(t *testing.T) {
	cache := openTestCache(t)

	if err := cache.Put("k", 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Put("k", 2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	var n int
	if _, err := cache.Get("k", &n); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
}

func TestCacheDelete(t *testing.T) {
	cache := openTestCache(t)

	if err := cache.Put(CacheKeySession, "snapshot"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.Delete(CacheKeySession); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var s string
	found, err := cache.Get(CacheKeySession, &s)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatalf("deleted key reported as found")
	}
}
