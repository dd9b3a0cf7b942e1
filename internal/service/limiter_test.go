package service

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeCounter struct {
	counts map[int64]int
}

func (c *fakeCounter) CheckRateLimit(_ context.Context, userID int64, action string, limit int, window time.Duration) (bool, error) {
	if action != "bet" || window != time.Minute {
		return false, nil
	}
	c.counts[userID]++
	return c.counts[userID] <= limit, nil
}

func TestWindowLimiter(t *testing.T) {
	l := NewWindowLimiter(&fakeCounter{counts: map[int64]int{}}, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, 1); !ok {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, 1); ok {
		t.Fatal("third call should be rejected")
	}
	if ok, _ := l.Allow(ctx, 2); !ok {
		t.Fatal("other users keep their own window")
	}
}

func TestMemoryLimiterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewMemoryLimiter(ctx, 3)
	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(ctx, 7); !ok {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, 7); ok {
		t.Fatal("call beyond burst should be rejected")
	}
	if ok, _ := l.Allow(ctx, 8); !ok {
		t.Fatal("other users keep their own bucket")
	}
}

func TestMemoryLimiterDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewMemoryLimiter(ctx, 0)
	for i := 0; i < 100; i++ {
		if ok, _ := l.Allow(ctx, 1); !ok {
			t.Fatal("a zero limit should not reject")
		}
	}
}

func TestUserLocksSerialise(t *testing.T) {
	locks := newUserLocks()
	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.Lock(42)
			defer release()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxSeen)
	}
	if locks.len() != 0 {
		t.Errorf("entries left = %d, want 0", locks.len())
	}
}
