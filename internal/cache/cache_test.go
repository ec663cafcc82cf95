package cache

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/marketlens/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("http", "https://shop.example/search?q=laptop")
	b := Key("http", "https://shop.example/search?q=laptop")
	c := Key("browser", "https://shop.example/search?q=laptop")

	if a != b {
		t.Error("same parts produced different keys")
	}
	if a == c {
		t.Error("different parts produced the same key")
	}
	if !strings.HasPrefix(a, "marketlens:v1:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss")
	}
	_ = c.Set("k", []byte("v"), 0)
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("expected hit with v, got %q %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("http", "u")

	if err := c.Set(key, []byte(`[{"title":"A"}]`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok := c.Get(key)
	if !ok || !bytes.Equal(got, []byte(`[{"title":"A"}]`)) {
		t.Fatalf("unexpected get: %q %v", got, ok)
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path(key)); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("x")

	if err := os.WriteFile(c.path(key), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("corrupt entry must miss")
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("deleting a missing entry should not fail: %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set("k", []byte("payload"), 0)

	mem := NewMemoryCache(time.Minute, time.Minute)
	c := &LayeredCache{memory: mem, disk: disk}

	got, ok := c.Get("k")
	if !ok || string(got) != "payload" {
		t.Fatalf("expected disk hit, got %q %v", got, ok)
	}
	if _, ok := mem.Get("k"); !ok {
		t.Error("disk hit should be promoted to memory")
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(model.CacheConfig{Enabled: false}).(Nop); !ok {
		t.Error("disabled cache should be Nop")
	}

	c := FromConfig(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute})
	_ = c.Set("k", []byte("v"), 0)
	if _, ok := c.Get("k"); !ok {
		t.Error("memory-only cache should hold values")
	}
}
