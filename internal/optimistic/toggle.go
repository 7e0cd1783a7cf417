// Package optimistic coordinates mutations that answer before the
// backend does. The caller gets the flipped state immediately while the
// durable write settles in the background; a failed write triggers a
// compensating revert back to the prior state.
package optimistic

import (
	"context"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/storysphere/storysphere-server/internal/errors"
)

// Status is the lifecycle of one toggle key.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusCommitted Status = "committed"
	StatusReverting Status = "reverting"
)

// ErrInFlight rejects a toggle whose previous application has not
// settled yet. Rapid double-clicks hit this instead of racing.
var ErrInFlight = apperrors.Conflict("mutation already in flight")

// Settled reports how an optimistic application ended up.
type Settled[S any] struct {
	// Value is the final state: the optimistic one when committed, the
	// prior one after a revert.
	Value     S
	Committed bool
	// Err is the persist failure that forced the revert, nil when
	// committed. A failed revert is joined onto it.
	Err error
}

// Toggle runs optimistic flips keyed by an arbitrary string, typically
// "<entity>/<user>". After a toggle settles the key stays guarded for a
// cooldown so immediate re-toggles are absorbed.
type Toggle[S any] struct {
	mu       sync.Mutex
	statuses map[string]Status
	cooldown time.Duration
	logger   *slog.Logger
}

// New creates a coordinator. A zero cooldown releases keys as soon as
// they settle.
func New[S any](cooldown time.Duration, logger *slog.Logger) *Toggle[S] {
	return &Toggle[S]{
		statuses: make(map[string]Status),
		cooldown: cooldown,
		logger:   logger,
	}
}

// Status returns the current lifecycle state for a key.
func (t *Toggle[S]) Status(key string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.statuses[key]; ok {
		return s
	}
	return StatusIdle
}

// Apply flips a key from prev to next. The next state is returned
// immediately; persist runs in the background and the returned channel
// delivers exactly one Settled once it finishes. On persist failure,
// revert is called to restore prev.
//
// Returns ErrInFlight when the key has an unsettled or cooling-down
// application.
func (t *Toggle[S]) Apply(
	ctx context.Context,
	key string,
	prev, next S,
	persist func(ctx context.Context, state S) error,
	revert func(ctx context.Context, state S) error,
) (S, <-chan Settled[S], error) {
	t.mu.Lock()
	if s, ok := t.statuses[key]; ok && s != StatusIdle {
		t.mu.Unlock()
		var zero S
		return zero, nil, ErrInFlight
	}
	t.statuses[key] = StatusPending
	t.mu.Unlock()

	settled := make(chan Settled[S], 1)

	// The write outlives the request that triggered it.
	bgCtx := context.WithoutCancel(ctx)
	go t.settle(bgCtx, key, prev, next, persist, revert, settled)

	return next, settled, nil
}

func (t *Toggle[S]) settle(
	ctx context.Context,
	key string,
	prev, next S,
	persist func(ctx context.Context, state S) error,
	revert func(ctx context.Context, state S) error,
	settled chan<- Settled[S],
) {
	err := persist(ctx, next)
	if err == nil {
		t.setStatus(key, StatusCommitted)
		settled <- Settled[S]{Value: next, Committed: true}
		t.release(key)
		return
	}

	t.setStatus(key, StatusReverting)
	if t.logger != nil {
		t.logger.Warn("persist failed, reverting optimistic state", "key", key, "error", err)
	}

	if revert != nil {
		if rerr := revert(ctx, prev); rerr != nil {
			// The compensating write failed too; surface both.
			if t.logger != nil {
				t.logger.Error("compensating revert failed", "key", key, "error", rerr)
			}
			err = apperrors.Join(err, rerr)
		}
	}
	settled <- Settled[S]{Value: prev, Committed: false, Err: err}
	t.release(key)
}

func (t *Toggle[S]) setStatus(key string, s Status) {
	t.mu.Lock()
	t.statuses[key] = s
	t.mu.Unlock()
}

// release frees the key after the cooldown elapses.
func (t *Toggle[S]) release(key string) {
	free := func() {
		t.mu.Lock()
		delete(t.statuses, key)
		t.mu.Unlock()
	}
	if t.cooldown <= 0 {
		free()
		return
	}
	time.AfterFunc(t.cooldown, free)
}
