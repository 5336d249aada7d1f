package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendMessageBucketExhausts(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 10; i++ {
		allowed, _ := rl.Allow("user-1", "send_message")
		assert.True(t, allowed, "message %d should be allowed", i+1)
	}

	allowed, wait := rl.Allow("user-1", "send_message")
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestBucketsAreScopedPerUser(t *testing.T) {
	rl := NewRateLimiter()

	allowed, _ := rl.Allow("user-1", "password_reset")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("user-1", "password_reset")
	assert.False(t, allowed)

	// A different user is untouched.
	allowed, _ = rl.Allow("user-2", "password_reset")
	assert.True(t, allowed)
}

func TestBucketsAreScopedPerAction(t *testing.T) {
	rl := NewRateLimiter()

	allowed, _ := rl.Allow("user-1", "resend_verification")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("user-1", "resend_verification")
	assert.False(t, allowed)

	// Exhausting one action does not affect another.
	allowed, _ = rl.Allow("user-1", "send_message")
	assert.True(t, allowed)
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(1, 1, 10*time.Millisecond)

	allowed, _ := tb.Allow()
	assert.True(t, allowed)
	allowed, _ = tb.Allow()
	assert.False(t, allowed)

	time.Sleep(15 * time.Millisecond)

	allowed, _ = tb.Allow()
	assert.True(t, allowed)
}
