package dashcache_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"studioload/internal/dashcache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestGetOrComputeRespectsTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)}
	cache := dashcache.New[int](dashcache.WithClock[int](clock.Now))

	calls := 0
	compute := func() (int, error) {
		calls++
		return calls, nil
	}

	if v, err := cache.GetOrCompute(time.Minute, compute); err != nil || v != 1 {
		t.Fatalf("first call: v=%d err=%v", v, err)
	}
	clock.Advance(30 * time.Second)
	if v, _ := cache.GetOrCompute(time.Minute, compute); v != 1 {
		t.Fatalf("expected cached value 1, got %d", v)
	}
	clock.Advance(31 * time.Second)
	if v, _ := cache.GetOrCompute(time.Minute, compute); v != 2 {
		t.Fatalf("expected recompute after ttl, got %d", v)
	}
	if v, _ := cache.GetOrCompute(0, compute); v != 3 {
		t.Fatalf("expected zero ttl to recompute, got %d", v)
	}
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	cache := dashcache.New[string]()
	boom := errors.New("tracker offline")

	if _, err := cache.GetOrCompute(time.Hour, func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if _, _, ok := cache.Peek(); ok {
		t.Fatal("expected nothing cached after error")
	}
	v, err := cache.GetOrCompute(time.Hour, func() (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("unexpected v=%q err=%v", v, err)
	}
}

func TestInvalidateForcesRecompute(t *testing.T) {
	cache := dashcache.New[int]()
	var calls int
	compute := func() (int, error) { calls++; return calls, nil }

	_, _ = cache.GetOrCompute(time.Hour, compute)
	cache.Invalidate()
	if v, _ := cache.GetOrCompute(time.Hour, compute); v != 2 {
		t.Fatalf("expected recompute after invalidate, got %d", v)
	}
}

func TestConcurrentMissesShareCompute(t *testing.T) {
	cache := dashcache.New[int]()
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cache.GetOrCompute(time.Hour, compute)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, v := range results {
		if v != 42 {
			t.Fatalf("result %d: expected 42, got %d", i, v)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single compute, got %d", n)
	}
}
