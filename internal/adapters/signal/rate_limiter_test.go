package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendRateLimiter(t *testing.T) {
	rl := NewSendRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("u-1"), "send %d within limit", i+1)
	}
	assert.False(t, rl.Allow("u-1"), "fourth send is blocked")

	// Another user has an independent window.
	assert.True(t, rl.Allow("u-2"))

	// The window slides: old attempts expire.
	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("u-1"))
}
