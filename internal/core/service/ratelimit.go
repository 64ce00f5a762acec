package service

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterRegistry manages one token bucket per client address.
// Buckets are reference counted and dropped when the last connection from
// that address releases them.
type RateLimiterRegistry struct {
	perSecond int

	mu       sync.Mutex
	limiters map[string]*limiterRef
}

type limiterRef struct {
	limiter *rate.Limiter
	refs    int
}

// NewRateLimiterRegistry creates a registry allowing perSecond commands per
// second per client with an equal burst. perSecond <= 0 disables limiting.
func NewRateLimiterRegistry(perSecond int) *RateLimiterRegistry {
	return &RateLimiterRegistry{
		perSecond: perSecond,
		limiters:  make(map[string]*limiterRef),
	}
}

// Enabled reports whether limiting is active.
func (r *RateLimiterRegistry) Enabled() bool {
	return r != nil && r.perSecond > 0
}

// Acquire returns the limiter for client, creating it on first use.
// It returns nil when limiting is disabled. Every Acquire must be paired
// with a Release.
func (r *RateLimiterRegistry) Acquire(client string) *rate.Limiter {
	if !r.Enabled() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.limiters[client]
	if !ok {
		ref = &limiterRef{limiter: rate.NewLimiter(rate.Limit(r.perSecond), r.perSecond)}
		r.limiters[client] = ref
	}
	ref.refs++
	return ref.limiter
}

// Release drops one reference to client's limiter.
func (r *RateLimiterRegistry) Release(client string) {
	if !r.Enabled() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.limiters[client]
	if !ok {
		return
	}
	if ref.refs--; ref.refs <= 0 {
		delete(r.limiters, client)
	}
}

// Len returns the number of tracked clients.
func (r *RateLimiterRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
