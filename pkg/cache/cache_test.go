package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// exercise runs the behaviour every backend shares.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v2" {
		t.Fatalf("Get(k) = %q, %v, %v; want v2", data, hit, err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry still returned")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry still returned")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, c)
}

func TestFileCacheCorruptEntry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Errorf("Clear() = %d, %v; want 3", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestMemoryCache(t *testing.T) {
	exercise(t, NewMemoryCache(0, 0))
}

func TestMemoryCacheEvicts(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Hour)
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("oldest entry not evicted")
	}
}

func TestMemoryCacheCopiesInput(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0, 0)
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	if got, _, _ := c.Get(ctx, "k"); string(got) != "abc" {
		t.Errorf("Get() = %q, want abc", got)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("KINTREE_TEST_REDIS")
	if addr == "" {
		t.Skip("KINTREE_TEST_REDIS not set")
	}
	c, err := NewRedisCache(context.Background(), RedisOptions{Addr: addr, Prefix: "kintree-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"default none", Config{}, "*cache.NullCache", false},
		{"dir implies file", Config{Dir: t.TempDir()}, "*cache.FileCache", false},
		{"memory", Config{Backend: BackendMemory}, "*cache.MemoryCache", false},
		{"file without dir", Config{Backend: BackendFile}, "", true},
		{"unknown", Config{Backend: "memcached"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Open() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			defer c.Close()
			if got := typeName(c); got != tt.want {
				t.Errorf("Open() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case *NullCache:
		return "*cache.NullCache"
	case *FileCache:
		return "*cache.FileCache"
	case *MemoryCache:
		return "*cache.MemoryCache"
	case *RedisCache:
		return "*cache.RedisCache"
	}
	return "?"
}

func TestKeys(t *testing.T) {
	if SearchKey("http://x", "Smith ") != SearchKey("http://x", "smith") {
		t.Error("SearchKey should normalize the query")
	}
	if SearchKey("http://x", "smith") == SearchKey("http://y", "smith") {
		t.Error("SearchKey should depend on the base URL")
	}
	if h := Hash([]byte("hello")); len(h) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h))
	}
}
