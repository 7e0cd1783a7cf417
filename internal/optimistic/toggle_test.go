package optimistic

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/storysphere/storysphere-server/internal/errors"
)

type likeState struct {
	Liked bool
	Count int
}

func TestApply_Commit(t *testing.T) {
	tg := New[likeState](0, nil)

	prev := likeState{Liked: false, Count: 3}
	next := likeState{Liked: true, Count: 4}

	persisted := atomic.Bool{}
	got, settled, err := tg.Apply(context.Background(), "story-1/u1", prev, next,
		func(ctx context.Context, s likeState) error {
			persisted.Store(true)
			return nil
		},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, next, got, "optimistic value returned before persist settles")

	outcome := <-settled
	assert.True(t, outcome.Committed)
	assert.NoError(t, outcome.Err)
	assert.Equal(t, next, outcome.Value)
	assert.True(t, persisted.Load())

	// Key is free again once settled with zero cooldown.
	assert.Equal(t, StatusIdle, tg.Status("story-1/u1"))
}

func TestApply_RevertOnPersistFailure(t *testing.T) {
	tg := New[likeState](0, nil)

	prev := likeState{Liked: false, Count: 3}
	next := likeState{Liked: true, Count: 4}

	var reverted atomic.Bool
	boom := apperrors.Persistence("backend down")

	got, settled, err := tg.Apply(context.Background(), "story-1/u1", prev, next,
		func(ctx context.Context, s likeState) error { return boom },
		func(ctx context.Context, s likeState) error {
			assert.Equal(t, prev, s, "revert receives the prior state")
			reverted.Store(true)
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, next, got, "caller still sees the optimistic value first")

	outcome := <-settled
	assert.False(t, outcome.Committed)
	assert.ErrorIs(t, outcome.Err, apperrors.ErrPersistence)
	assert.Equal(t, prev, outcome.Value, "settled value is the reverted state")
	assert.True(t, reverted.Load())
}

func TestApply_RevertFailureJoined(t *testing.T) {
	tg := New[likeState](0, nil)

	persistErr := apperrors.Persistence("write failed")
	revertErr := apperrors.Persistence("revert failed")

	_, settled, err := tg.Apply(context.Background(), "k", likeState{}, likeState{Liked: true},
		func(ctx context.Context, s likeState) error { return persistErr },
		func(ctx context.Context, s likeState) error { return revertErr },
	)
	require.NoError(t, err)

	outcome := <-settled
	assert.ErrorIs(t, outcome.Err, persistErr)
	assert.ErrorIs(t, outcome.Err, revertErr)
}

func TestApply_InFlightSuppression(t *testing.T) {
	tg := New[likeState](0, nil)

	release := make(chan struct{})
	_, settled, err := tg.Apply(context.Background(), "k", likeState{}, likeState{Liked: true},
		func(ctx context.Context, s likeState) error {
			<-release
			return nil
		},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tg.Status("k"))

	// Second application on the same key is rejected while pending.
	_, _, err = tg.Apply(context.Background(), "k", likeState{Liked: true}, likeState{},
		func(ctx context.Context, s likeState) error { return nil }, nil)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// A different key is unaffected.
	_, other, err := tg.Apply(context.Background(), "other", likeState{}, likeState{Liked: true},
		func(ctx context.Context, s likeState) error { return nil }, nil)
	require.NoError(t, err)
	<-other

	close(release)
	<-settled
	assert.Equal(t, StatusIdle, tg.Status("k"))
}

func TestApply_CooldownHoldsKey(t *testing.T) {
	tg := New[likeState](50*time.Millisecond, nil)

	_, settled, err := tg.Apply(context.Background(), "k", likeState{}, likeState{Liked: true},
		func(ctx context.Context, s likeState) error { return nil }, nil)
	require.NoError(t, err)
	<-settled

	// Still guarded right after settling.
	_, _, err = tg.Apply(context.Background(), "k", likeState{Liked: true}, likeState{},
		func(ctx context.Context, s likeState) error { return nil }, nil)
	assert.ErrorIs(t, err, ErrInFlight)

	// Released after the cooldown.
	assert.Eventually(t, func() bool {
		return tg.Status("k") == StatusIdle
	}, time.Second, 10*time.Millisecond)
}

func TestApply_SurvivesCallerCancellation(t *testing.T) {
	tg := New[likeState](0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	_, settled, err := tg.Apply(ctx, "k", likeState{}, likeState{Liked: true},
		func(ctx context.Context, s likeState) error {
			// The background context must not inherit the caller's cancel.
			return ctx.Err()
		},
		nil,
	)
	require.NoError(t, err)
	cancel()

	outcome := <-settled
	assert.True(t, outcome.Committed)
}
