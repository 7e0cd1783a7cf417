package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/store"
)

func TestDraftSaveGetDiscard(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	saved, err := e.drafts.Save(ctx, "user-1", store.Draft{
		Title:   "Half Finished",
		Content: "<p>so far</p>",
		Tags:    []string{"technology"},
	})
	require.NoError(t, err)
	assert.False(t, saved.SavedAt.IsZero())

	got, err := e.drafts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Half Finished", got.Title)

	require.NoError(t, e.drafts.Discard(ctx, "user-1"))
	_, err = e.drafts.Get(ctx, "user-1")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	// Discarding an absent draft is a no-op.
	require.NoError(t, e.drafts.Discard(ctx, "user-1"))
}

func TestDraftStage_WinsOverPersisted(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.drafts.Save(ctx, "user-1", store.Draft{Title: "Persisted"})
	require.NoError(t, err)

	e.drafts.Stage("user-1", store.Draft{Title: "Staged Edit"})

	got, err := e.drafts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Staged Edit", got.Title)
}

func TestDraftFlush(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.drafts.Stage("user-1", store.Draft{Title: "Typed Recently"})
	e.drafts.Flush(ctx)

	got, err := e.store.Drafts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Typed Recently", got.Title)
	assert.False(t, got.SavedAt.IsZero())

	// Once flushed, nothing is staged anymore.
	e.drafts.Flush(ctx)
	got2, err := e.store.Drafts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, got.SavedAt, got2.SavedAt)
}

func TestDraftSave_DropsStaged(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.drafts.Stage("user-1", store.Draft{Title: "Old Staged"})
	_, err := e.drafts.Save(ctx, "user-1", store.Draft{Title: "Explicit Save"})
	require.NoError(t, err)

	got, err := e.drafts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Explicit Save", got.Title)
}
