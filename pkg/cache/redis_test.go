package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedisCache(t)

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("value"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get() = %q, %v, %v; want value, true, nil", data, hit, err)
	}

	if !mr.Exists(DefaultRedisPrefix + "k") {
		t.Errorf("key should be stored under prefix %q", DefaultRedisPrefix)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after Delete should miss")
	}
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedisCache(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if ttl := mr.TTL(DefaultRedisPrefix + "k"); ttl != time.Minute {
		t.Errorf("TTL = %v, want %v", ttl, time.Minute)
	}

	mr.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after TTL should miss")
	}
}

func TestRedisCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, mr := setupRedisCache(t)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := mr.Set("other:key", "keep"); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if mr.Exists(DefaultRedisPrefix+"a") || mr.Exists(DefaultRedisPrefix+"b") {
		t.Error("Clear() should delete prefixed keys")
	}
	if !mr.Exists("other:key") {
		t.Error("Clear() should not touch keys outside the prefix")
	}

	// Clearing an empty namespace is fine.
	if err := c.Clear(ctx); err != nil {
		t.Errorf("Clear() on empty cache error: %v", err)
	}
}

func TestNewRedisCache_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := NewRedisCache(ctx, "not-a-url"); err == nil {
		t.Error("NewRedisCache() with invalid URL should fail")
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error: %v", err)
	}
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisCache(ctx, "redis://"+addr); err == nil {
		t.Error("NewRedisCache() with unreachable server should fail")
	}
}
