package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/xraph/steward"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	key := steward.CacheKey("t1", "role_a", "u1", "leads", "show")
	result := steward.CheckResult{Allowed: true, Decision: steward.DecisionAllow}

	// Miss
	_, ok := c.Get(ctx, key)
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, key, result)
	got, ok := c.Get(ctx, key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.Allowed {
		t.Fatal("expected allowed")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	key := steward.CacheKey("t1", "role_a", "u1", "leads", "show")
	c.Set(ctx, key, steward.CheckResult{Allowed: true})
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, key)
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidateTenant(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	k1 := steward.CacheKey("t1", "role_a", "u1", "leads", "show")
	k2 := steward.CacheKey("t1", "role_b", "u2", "leads", "assign")
	k3 := steward.CacheKey("t2", "role_a", "u1", "leads", "show")

	c.Set(ctx, k1, steward.CheckResult{Allowed: true})
	c.Set(ctx, k2, steward.CheckResult{Allowed: false})
	c.Set(ctx, k3, steward.CheckResult{Allowed: true})

	c.InvalidateTenant(ctx, "t1")

	if _, ok := c.Get(ctx, k1); ok {
		t.Fatal("t1 role_a should be invalidated")
	}
	if _, ok := c.Get(ctx, k2); ok {
		t.Fatal("t1 role_b should be invalidated")
	}
	if _, ok := c.Get(ctx, k3); !ok {
		t.Fatal("t2 entry should still be cached")
	}
}

func TestMemoryCacheInvalidateRole(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	k1 := steward.CacheKey("t1", "role_a", "u1", "leads", "show")
	k2 := steward.CacheKey("t1", "role_b", "u2", "leads", "show")

	c.Set(ctx, k1, steward.CheckResult{Allowed: true})
	c.Set(ctx, k2, steward.CheckResult{Allowed: true})

	c.InvalidateRole(ctx, "role_a")

	if _, ok := c.Get(ctx, k1); ok {
		t.Fatal("role_a should be invalidated")
	}
	if _, ok := c.Get(ctx, k2); !ok {
		t.Fatal("role_b should still be cached")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		key := steward.CacheKey("t1", "role_a", "u1", "leads", fmt.Sprintf("action-%d", i))
		c.Set(ctx, key, steward.CheckResult{Allowed: true})
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}
