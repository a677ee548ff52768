package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/filmwiki/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://en.wikipedia.org/w/api.php?action=parse&page=A")
	b := CacheKey("https://en.wikipedia.org/w/api.php?action=parse&page=B")

	if !strings.HasPrefix(a, keyPrefix) {
		t.Errorf("expected prefix %s, got %s", keyPrefix, a)
	}
	if a == b {
		t.Error("expected distinct keys for distinct URLs")
	}
	if a != CacheKey("https://en.wikipedia.org/w/api.php?action=parse&page=A") {
		t.Error("expected stable keys")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok := c.Get("k"); !ok || string(got) != "v" {
		t.Errorf("expected hit v, got %q %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}

	_ = c.Set("short", []byte("x"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("expected expired entry to miss")
	}

	_ = c.Clear()
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Clear")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("https://example.org/a")

	if err := c.Set(key, []byte(`{"parse":{}}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != `{"parse":{}}` {
		t.Fatalf("expected hit, got %q %v", got, ok)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || strings.Contains(entries[0].Name(), ":") {
		t.Errorf("expected one colon-free cache file, got %v", entries)
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path(key)); !os.IsNotExist(err) {
		t.Error("expected expired entry removed from disk")
	}
}

func TestDiskCache_CorruptEntryMisses(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("https://example.org/b")

	if err := os.WriteFile(c.path(key), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected corrupt entry to miss")
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("expected deleting a missing entry to succeed, got %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	memory := NewMemoryCache(time.Minute, time.Minute)
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set("k", []byte("from disk"), 0)

	c := NewLayers(memory, disk)
	got, ok := c.Get("k")
	if !ok || string(got) != "from disk" {
		t.Fatalf("expected disk hit, got %q %v", got, ok)
	}
	if _, ok := memory.Get("k"); !ok {
		t.Error("expected disk hit promoted to memory")
	}

	_ = c.Set("n", []byte("new"), 0)
	if _, ok := disk.Get("n"); !ok {
		t.Error("expected Set to reach disk")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir)); !os.IsNotExist(err) {
		t.Error("expected disk directory removed")
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(model.CacheConfig{Enabled: false}).(Nop); !ok {
		t.Error("expected Nop cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache); !ok {
		t.Error("expected memory cache without a directory")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir(), MemoryTTL: time.Minute}).(*LayeredCache); !ok {
		t.Error("expected layered cache with a directory")
	}
}
