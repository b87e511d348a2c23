package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long a client's limiter survives without traffic
// before it becomes eligible for eviction.
const idleTTL = time.Hour

// clientLimiter pairs a token bucket with its last use, so limiters for
// clients that went away can be reclaimed.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter enforces a per-client request budget. Each client gets its own
// token bucket, created on first use and evicted after an hour of
// inactivity.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
}

// NewLimiter converts an hourly budget into a refill rate. burst bounds
// how many requests a client can fire back to back.
func NewLimiter(requestsPerHour int, burst int) *Limiter {
	return &Limiter{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(float64(requestsPerHour) / 3600.0),
		burst:   burst,
	}
}

// Allow reports whether the client may make a request now.
func (l *Limiter) Allow(clientKey string) bool {
	return l.get(clientKey).Allow()
}

// Tokens returns the client's remaining burst capacity.
func (l *Limiter) Tokens(clientKey string) float64 {
	return l.get(clientKey).Tokens()
}

func (l *Limiter) get(clientKey string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.clients[clientKey]
	if !ok {
		// New clients pay for the sweep, keeping the map bounded by the
		// set of clients seen in the last hour.
		l.evictIdle(now)
		entry = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[clientKey] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// evictIdle drops limiters idle past the TTL. Callers must hold l.mu.
func (l *Limiter) evictIdle(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > idleTTL {
			delete(l.clients, key)
		}
	}
}
