package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedis(client), mr
}

func TestGetMissReturnsSentinel(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get on absent key = %v, want ErrCacheMiss", err)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	if err := c.Set(ctx, "slug:unique:product:widget:0", "1", time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	val, err := c.Get(ctx, "slug:unique:product:widget:0")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if val != "1" {
		t.Errorf("Get = %q, want 1", val)
	}
}

func TestSetHonorsTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	if err := c.Set(ctx, "verdict", "0", 30*time.Second); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	mr.FastForward(31 * time.Second)

	if _, err := c.Get(ctx, "verdict"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get after expiry = %v, want ErrCacheMiss", err)
	}
}

func TestDeleteRemovesExactKeys(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, "x", 0); err != nil {
			t.Fatalf("Set(%s) returned error: %v", key, err)
		}
	}

	if err := c.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("key a should be gone")
	}
	if _, err := c.Get(ctx, "c"); err != nil {
		t.Errorf("key c should survive, got %v", err)
	}
}

func TestDeleteWithNoKeysIsNoOp(t *testing.T) {
	c, _ := newTestCache(t)
	if err := c.Delete(context.Background()); err != nil {
		t.Fatalf("Delete with no keys = %v, want nil", err)
	}
}

func TestIncrCountsAndExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	key := DailyCreateQuotaKey(7, "2026-08-31")
	for want := int64(1); want <= 3; want++ {
		got, err := c.Incr(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("Incr returned error: %v", err)
		}
		if got != want {
			t.Fatalf("Incr = %d, want %d", got, want)
		}
	}

	// The expiry set on first increment survives later increments
	mr.FastForward(61 * time.Second)
	got, err := c.Incr(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("Incr after expiry returned error: %v", err)
	}
	if got != 1 {
		t.Errorf("Incr after expiry = %d, want a fresh counter at 1", got)
	}
}
