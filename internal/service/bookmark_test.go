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

func TestBookmarkAddAndList(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	first := e.publish(t, "user-1", "Saved One")
	second := e.publish(t, "user-1", "Saved Two")

	_, err := e.bookmarks.Add(ctx, "user-2", first.ID)
	require.NoError(t, err)
	_, err = e.bookmarks.Add(ctx, "user-2", second.ID)
	require.NoError(t, err)

	list, err := e.bookmarks.List(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, v := range list {
		assert.True(t, v.IsBookmarked)
	}

	ok, err := e.bookmarks.IsBookmarked(ctx, "user-2", first.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.bookmarks.IsBookmarked(ctx, "user-1", first.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	count, err := e.bookmarks.CountForStory(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = e.bookmarks.CountForStory(ctx, "story-missing")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBookmarkAdd_Idempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Saved Twice")

	first, err := e.bookmarks.Add(ctx, "user-2", story.ID)
	require.NoError(t, err)
	second, err := e.bookmarks.Add(ctx, "user-2", story.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := e.bookmarks.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBookmarkToggle_Optimistic(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Toggled Save")

	state, settled, err := e.bookmarks.Toggle(ctx, "user-2", story.ID)
	require.NoError(t, err)
	assert.True(t, state.IsBookmarked)
	assert.Equal(t, 1, state.Count)

	outcome := <-settled
	require.True(t, outcome.Committed)

	ok, err := e.bookmarks.IsBookmarked(ctx, "user-2", story.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Double-clicks during the settle window are rejected.
	_, _, err = e.bookmarks.Toggle(ctx, "user-2", story.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	require.Eventually(t, func() bool {
		var s2 <-chan optimistic.Settled[BookmarkState]
		state, s2, err = e.bookmarks.Toggle(ctx, "user-2", story.ID)
		if err != nil {
			return false
		}
		<-s2
		return true
	}, 2*time.Second, 50*time.Millisecond)
	assert.False(t, state.IsBookmarked)

	ok, err = e.bookmarks.IsBookmarked(ctx, "user-2", story.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookmarkToggle_AnonymousRejected(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "No Viewer")

	_, _, err := e.bookmarks.Toggle(ctx, "", story.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestBookmarkAdd_MissingStory(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.bookmarks.Add(ctx, "user-1", "story-missing")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestBookmarkRemove(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Unsaved")

	_, err := e.bookmarks.Add(ctx, "user-2", story.ID)
	require.NoError(t, err)
	require.NoError(t, e.bookmarks.Remove(ctx, "user-2", story.ID))

	// Removing again is a no-op.
	require.NoError(t, e.bookmarks.Remove(ctx, "user-2", story.ID))

	list, err := e.bookmarks.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, list)
}
