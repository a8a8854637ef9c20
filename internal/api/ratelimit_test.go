package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"), "burst of 2 exhausted")

	// a different client has its own bucket
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiter_MapReset(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	for i := 0; i < maxTrackedClients; i++ {
		rl.limiters[string(rune(i))] = nil
	}
	// hitting the cap clears the map instead of growing without bound
	assert.True(t, rl.Allow("fresh-client"))
	assert.Len(t, rl.limiters, 1)
}
