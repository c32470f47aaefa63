package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between upstream requests. The wire
// service rejects accounts that exceed their request cadence, so every network
// call shares one Limiter instance per upstream endpoint.
type Limiter struct {
	limiter *rate.Limiter
}

func NewLimiter(minInterval time.Duration) *Limiter {
	if minInterval <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Acquire blocks until the minimum interval has elapsed since the previous
// caller was released. Waiters are served in FIFO order. The only failure mode
// is context cancellation.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}
