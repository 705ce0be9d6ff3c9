package server

import (
	"sync"
	"time"
)

// RateLimiter caps inbound messages per connection over a sliding window so
// one abusive client cannot flood a room. Timestamps outside the window are
// dropped on each check, which keeps memory bounded per connection.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	requests    map[string][]time.Time // connectionID -> recent message times
	mu          sync.Mutex
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
	}
}

// Allow reports whether a connection may send another message now.
func (r *RateLimiter) Allow(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	timestamps := r.requests[connectionID]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= r.maxRequests {
		r.requests[connectionID] = valid
		return false
	}

	r.requests[connectionID] = append(valid, now)
	return true
}

// RemoveConnection drops rate limit state for a closed connection.
func (r *RateLimiter) RemoveConnection(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, connectionID)
}
