package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/optimistic"
)

func TestUserGetByUsername_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	user, err := e.users.GetByUsername(ctx, "SarahWrites")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	_, err = e.users.GetByUsername(ctx, "nobody")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUserUpdateProfile_Partial(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	bio := "Writes about machines."
	user, err := e.users.UpdateProfile(ctx, "user-1", UpdateProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, user.Bio)
	assert.Equal(t, "Sarah Mitchell", user.Name)

	// Preferences merge rather than replace.
	_, err = e.users.UpdateProfile(ctx, "user-1", UpdateProfileInput{
		Preferences: map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)
	user, err = e.users.UpdateProfile(ctx, "user-1", UpdateProfileInput{
		Preferences: map[string]any{"digest": true},
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", user.Preferences["theme"])
	assert.Equal(t, true, user.Preferences["digest"])
}

func TestUserFollowUnfollow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	state, settled, err := e.users.Follow(ctx, "user-1", "user-2")
	require.NoError(t, err)
	assert.True(t, state.IsFollowing)
	assert.Equal(t, 1, state.Followers)

	outcome := <-settled
	require.True(t, outcome.Committed)

	target, err := e.users.GetByID(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, target.Followers)

	follower, err := e.users.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, follower.Following)

	// The settle window absorbs an immediate reversal.
	_, _, err = e.users.Unfollow(ctx, "user-1", "user-2")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	require.Eventually(t, func() bool {
		var s2 <-chan optimistic.Settled[FollowState]
		state, s2, err = e.users.Unfollow(ctx, "user-1", "user-2")
		if err != nil {
			return false
		}
		<-s2
		return true
	}, 2*time.Second, 50*time.Millisecond)
	assert.False(t, state.IsFollowing)
	assert.Zero(t, state.Followers)

	target, err = e.users.GetByID(ctx, "user-2")
	require.NoError(t, err)
	assert.Zero(t, target.Followers)
}

func TestUserFollow_SelfRejected(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, _, err := e.users.Follow(ctx, "user-1", "user-1")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestUserFollow_MissingTarget(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, _, err := e.users.Follow(ctx, "user-1", "user-404")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
