package verifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/veritas-cli/internal/core/domain"
)

// DefaultBackoff applies when a rate limit response names no retry delay.
const DefaultBackoff = 60 * time.Second

// RateLimiter spaces verifier calls with a token bucket and honours the
// retry delay of rate limit responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter allows perMinute calls per minute with a burst of one.
// A non-positive perMinute disables the token bucket; backoff still applies.
func NewRateLimiter(perMinute int) *RateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

// Wait blocks until a call may be made. During a backoff period that
// outlasts ctx's deadline it fails at once with domain.ErrRateLimited
// instead of sleeping into the deadline.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := retryAt.Sub(r.now()); wait > 0 {
		if deadline, ok := ctx.Deadline(); ok && deadline.Before(retryAt) {
			return fmt.Errorf("backing off for %s: %w", wait.Round(time.Second), domain.ErrRateLimited)
		}
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", domain.ErrRateLimited)
	}
	return nil
}

// Backoff blocks calls for d, or DefaultBackoff when d is not positive.
// A shorter backoff never cuts an existing one short.
func (r *RateLimiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = DefaultBackoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if until := r.now().Add(d); until.After(r.retryAt) {
		r.retryAt = until
	}
}

// BackingOff reports whether a backoff period is active.
func (r *RateLimiter) BackingOff() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Before(r.retryAt)
}
