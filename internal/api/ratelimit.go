package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// maxTrackedClients bounds limiter map growth; hitting it resets all buckets
const maxTrackedClients = 10000

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	mu                sync.Mutex
	limiters          map[string]*rate.Limiter
	requestsPerSecond int
	burst             int
}

func NewRateLimiter(requestsPerSecond, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:          make(map[string]*rate.Limiter),
		requestsPerSecond: requestsPerSecond,
		burst:             burst,
	}
}

func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.limiters) >= maxTrackedClients {
		rl.limiters = make(map[string]*rate.Limiter)
	}

	limiter, ok := rl.limiters[client]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(rl.requestsPerSecond), rl.burst)
		rl.limiters[client] = limiter
	}
	return limiter.Allow()
}
