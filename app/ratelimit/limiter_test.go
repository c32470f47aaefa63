package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestLimiter_SequentialSpacing(t *testing.T) {
	interval := 20 * time.Millisecond
	limiter := NewLimiter(interval)
	ctx := context.Background()

	var returns []time.Time
	for i := 0; i < 4; i++ {
		if err := limiter.Acquire(ctx); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		returns = append(returns, time.Now())
	}

	for i := 1; i < len(returns); i++ {
		gap := returns[i].Sub(returns[i-1])
		// Allow a small scheduling tolerance below the nominal interval.
		if gap < interval-2*time.Millisecond {
			t.Errorf("Calls %d and %d spaced %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestLimiter_ConcurrentSpacing(t *testing.T) {
	interval := 15 * time.Millisecond
	limiter := NewLimiter(interval)
	ctx := context.Background()

	const callers = 5
	var mu sync.Mutex
	var returns []time.Time
	var wg sync.WaitGroup

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(ctx); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			mu.Lock()
			returns = append(returns, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(returns) != callers {
		t.Fatalf("Expected %d returns, got %d", callers, len(returns))
	}

	sort.Slice(returns, func(i, j int) bool { return returns[i].Before(returns[j]) })
	for i := 1; i < len(returns); i++ {
		gap := returns[i].Sub(returns[i-1])
		if gap < interval-2*time.Millisecond {
			t.Errorf("Concurrent returns %d and %d spaced %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestLimiter_CancelledContext(t *testing.T) {
	limiter := NewLimiter(time.Hour)
	ctx := context.Background()

	// First acquire consumes the initial token.
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	if err := limiter.Acquire(cancelCtx); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func TestLimiter_ZeroInterval(t *testing.T) {
	limiter := NewLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := limiter.Acquire(ctx); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Zero-interval limiter should not block, took %v", elapsed)
	}
}
