// Package latency simulates the round-trip delay of a remote backend so
// callers exercise their asynchronous paths against the local store.
package latency

import (
	"context"
	"time"
)

// Gate injects a fixed delay before store operations proceed.
// The zero value never delays.
type Gate struct {
	delay time.Duration
}

// NewGate creates a gate with the given delay. Zero or negative disables it.
func NewGate(delay time.Duration) *Gate {
	if delay < 0 {
		delay = 0
	}
	return &Gate{delay: delay}
}

// Delay returns the configured delay.
func (g *Gate) Delay() time.Duration {
	if g == nil {
		return 0
	}
	return g.delay
}

// Wait blocks for the configured delay or until ctx is cancelled,
// whichever comes first. Returns the context's error on cancellation.
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil || g.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(g.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
