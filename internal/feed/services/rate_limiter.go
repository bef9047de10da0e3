package services

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter enforces RedisQ's documented limits: one concurrent request
// per queueID, roughly 2 requests/sec per IP. Adapted verbatim from the
// teacher's zkillboard/services/rate_limiter.go.
type RateLimiter struct {
	mu              sync.Mutex
	requestInFlight bool
	lastRequest     time.Time
	minInterval     time.Duration
	backoffLevel    int
	maxBackoffLevel int
	baseBackoff     time.Duration
}

// NewRateLimiter returns a RateLimiter tuned to RedisQ's published limits.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		minInterval:     500 * time.Millisecond,
		baseBackoff:     5 * time.Second,
		maxBackoffLevel: 4,
	}
}

// Acquire waits out the minimum interval since the last request and marks a
// request in flight; it returns an error at once if one is already in flight.
func (r *RateLimiter) Acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.requestInFlight {
		return fmt.Errorf("request already in flight")
	}

	if elapsed := time.Since(r.lastRequest); elapsed < r.minInterval {
		time.Sleep(r.minInterval - elapsed)
	}

	r.requestInFlight = true
	r.lastRequest = time.Now()
	r.backoffLevel = 0
	return nil
}

// Release marks the in-flight request as complete.
func (r *RateLimiter) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestInFlight = false
}

// IncrementBackoff increases the exponential-backoff level after a 429.
func (r *RateLimiter) IncrementBackoff() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backoffLevel < r.maxBackoffLevel {
		r.backoffLevel++
	}
}

// GetBackoffDuration returns the current backoff duration: 5s, 10s, 20s,
// 40s, 80s.
func (r *RateLimiter) GetBackoffDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.baseBackoff * time.Duration(1<<r.backoffLevel)
}
