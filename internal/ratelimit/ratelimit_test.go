package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstThenThrottle(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, krl.Allow("client-a"), "request %d within burst", i)
	}
	assert.False(t, krl.Allow("client-a"), "burst exhausted")
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-b"), "a throttled key does not affect others")
}

func TestWait_RespectsContext(t *testing.T) {
	krl := New(0.1, 1)
	defer krl.Stop()

	require.True(t, krl.Allow("client-a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := krl.Wait(ctx, "client-a")
	assert.Error(t, err, "waiting longer than the deadline fails")
}

func TestStop_IsIdempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}
