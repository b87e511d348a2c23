package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowEnforcesBurst(t *testing.T) {
	limiter := NewLimiter(100, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("client-a"), "request %d within burst", i)
	}
	// Burst spent; the hourly refill rate is far too slow to matter here.
	assert.False(t, limiter.Allow("client-a"))
}

func TestClientsAreIsolated(t *testing.T) {
	limiter := NewLimiter(100, 1)

	require.True(t, limiter.Allow("client-a"))
	require.False(t, limiter.Allow("client-a"))

	assert.True(t, limiter.Allow("client-b"))
}

func TestTokensReflectsRemainingBudget(t *testing.T) {
	limiter := NewLimiter(100, 5)

	require.True(t, limiter.Allow("client-a"))
	assert.Less(t, limiter.Tokens("client-a"), 5.0)
}

func TestIdleClientsAreEvicted(t *testing.T) {
	limiter := NewLimiter(100, 1)

	// Spend the client's whole budget, then backdate it past the TTL.
	require.True(t, limiter.Allow("client-a"))
	require.False(t, limiter.Allow("client-a"))
	limiter.mu.Lock()
	limiter.clients["client-a"].lastSeen = time.Now().Add(-2 * idleTTL)
	limiter.mu.Unlock()

	// A new client triggers the sweep.
	require.True(t, limiter.Allow("client-b"))

	limiter.mu.Lock()
	_, stale := limiter.clients["client-a"]
	limiter.mu.Unlock()
	assert.False(t, stale)

	// The evicted client starts over with a fresh bucket.
	assert.True(t, limiter.Allow("client-a"))
}

func TestActiveClientsSurviveEviction(t *testing.T) {
	limiter := NewLimiter(100, 2)

	require.True(t, limiter.Allow("client-a"))
	require.True(t, limiter.Allow("client-b"))

	limiter.mu.Lock()
	limiter.clients["client-a"].lastSeen = time.Now().Add(-2 * idleTTL)
	limiter.mu.Unlock()

	require.True(t, limiter.Allow("client-c"))

	limiter.mu.Lock()
	_, activeKept := limiter.clients["client-b"]
	limiter.mu.Unlock()
	assert.True(t, activeKept)
}
