package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	store, err := NewRedisStore(ctx, addr, os.Getenv("REDIS_PASSWORD"), 15)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func clearRateLimit(t *testing.T, store *RedisStore, userID int64, action string) {
	t.Helper()
	if err := store.client.Del(context.Background(), fmt.Sprintf(keyRateLimit, userID, action)).Err(); err != nil {
		t.Fatalf("clear rate limit: %v", err)
	}
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if _, err := NewRedisStore(ctx, "127.0.0.1:1", "", 0); err == nil {
		t.Fatal("expected error connecting to a closed port")
	}
}

func TestCheckRateLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := time.Now().UnixNano()
	t.Cleanup(func() { clearRateLimit(t, store, userID, "bet") })

	for i := 1; i <= 3; i++ {
		ok, err := store.CheckRateLimit(ctx, userID, "bet", 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit() error: %v", err)
		}
		if !ok {
			t.Fatalf("call %d should be allowed", i)
		}
	}

	ok, err := store.CheckRateLimit(ctx, userID, "bet", 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit() error: %v", err)
	}
	if ok {
		t.Fatal("fourth call should be rejected")
	}

	clearRateLimit(t, store, userID, "bet")
	ok, err = store.CheckRateLimit(ctx, userID, "bet", 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit() error: %v", err)
	}
	if !ok {
		t.Fatal("call after clear should be allowed")
	}
}

func TestCheckRateLimitWindowExpires(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := time.Now().UnixNano()

	if _, err := store.CheckRateLimit(ctx, userID, "bet", 1, time.Second); err != nil {
		t.Fatalf("CheckRateLimit() error: %v", err)
	}
	if ok, _ := store.CheckRateLimit(ctx, userID, "bet", 1, time.Second); ok {
		t.Fatal("second call inside the window should be rejected")
	}

	time.Sleep(1100 * time.Millisecond)
	ok, err := store.CheckRateLimit(ctx, userID, "bet", 1, time.Second)
	if err != nil {
		t.Fatalf("CheckRateLimit() error: %v", err)
	}
	if !ok {
		t.Fatal("call after the window should be allowed")
	}
}

func TestCheckRateLimitRestoresMissingWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := time.Now().UnixNano()
	key := fmt.Sprintf(keyRateLimit, userID, "bet")
	t.Cleanup(func() { clearRateLimit(t, store, userID, "bet") })

	// A counter stuck without a TTL, as a failed EXPIRE would leave it.
	if err := store.client.Set(ctx, key, 5, 0).Err(); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	ok, err := store.CheckRateLimit(ctx, userID, "bet", 3, time.Second)
	if err != nil {
		t.Fatalf("CheckRateLimit() error: %v", err)
	}
	if ok {
		t.Fatal("count above limit should be rejected")
	}

	ttl, err := store.client.PTTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("PTTL() error: %v", err)
	}
	if ttl <= 0 || ttl > time.Second {
		t.Fatalf("PTTL = %v, want a window of at most 1s", ttl)
	}

	time.Sleep(1100 * time.Millisecond)
	if ok, err := store.CheckRateLimit(ctx, userID, "bet", 3, time.Second); err != nil || !ok {
		t.Fatalf("CheckRateLimit() after window = %v, %v, want allowed", ok, err)
	}
}

func TestCheckRateLimitSetsWindowOnFirstHit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	userID := time.Now().UnixNano()
	t.Cleanup(func() { clearRateLimit(t, store, userID, "bet") })

	if _, err := store.CheckRateLimit(ctx, userID, "bet", 3, time.Minute); err != nil {
		t.Fatalf("CheckRateLimit() error: %v", err)
	}
	ttl, err := store.client.PTTL(ctx, fmt.Sprintf(keyRateLimit, userID, "bet")).Result()
	if err != nil {
		t.Fatalf("PTTL() error: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("PTTL = %v, want within one minute", ttl)
	}
}
