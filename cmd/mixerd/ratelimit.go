// ratelimit.go - Per-client rate limiting for the mixer daemon
package main

import (
	"sync"
	"time"
)

// tokenBucket is a simple token bucket refilled at a fixed per-second rate.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate int // tokens per second
	lastRefill time.Time
}

func newTokenBucket(maxTokens, refillRate int) *tokenBucket {
	return &tokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// allow consumes a token if one is available.
func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	refill := int(elapsed.Seconds()) * b.refillRate
	if refill > 0 {
		b.tokens += refill
		if b.tokens > b.maxTokens {
			b.tokens = b.maxTokens
		}
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// ClientRateLimiter tracks one bucket per client address.
type ClientRateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*tokenBucket
	maxTokens  int
	refillRate int
}

// NewClientRateLimiter creates a rate limiter with the given bucket shape.
func NewClientRateLimiter(maxTokens, refillRate int) *ClientRateLimiter {
	return &ClientRateLimiter{
		buckets:    make(map[string]*tokenBucket),
		maxTokens:  maxTokens,
		refillRate: refillRate,
	}
}

// Allow checks whether a request from the given client may proceed.
func (rl *ClientRateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	bucket, ok := rl.buckets[client]
	if !ok {
		bucket = newTokenBucket(rl.maxTokens, rl.refillRate)
		rl.buckets[client] = bucket
	}
	rl.mu.Unlock()

	return bucket.allow()
}
