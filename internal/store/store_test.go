package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storysphere/storysphere-server/internal/domain"
	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/kv"
	"github.com/storysphere/storysphere-server/internal/latency"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(kv.NewMemory(), latency.NewGate(0), nil)
}

func TestEnsureDefaultTags(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.EnsureDefaultTags(ctx))

	tags, err := s.Tags.All(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 10)

	bySlug := make(map[string]domain.Tag, len(tags))
	featured := 0
	for _, tag := range tags {
		bySlug[tag.Slug] = tag
		if tag.Featured {
			featured++
		}
		assert.NotEmpty(t, tag.ID)
		assert.Equal(t, tag.Slug, tag.Color)
		assert.Zero(t, tag.StoryCount)
		assert.False(t, tag.CreatedAt.IsZero())
	}
	assert.Equal(t, 3, featured)
	assert.Contains(t, bySlug, "technology")
	assert.Contains(t, bySlug, "entertainment")
	assert.Equal(t, "Latest in tech, software, and innovation", bySlug["technology"].Description)
}

func TestEnsureDefaultTags_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.EnsureDefaultTags(ctx))

	// Rename a tag, then seed again; the edit must survive.
	tag, err := s.Tags.GetByKey(ctx, "slug", "technology")
	require.NoError(t, err)
	tag.Name = "Tech"
	require.NoError(t, s.Tags.Update(ctx, tag))

	require.NoError(t, s.EnsureDefaultTags(ctx))

	got, err := s.Tags.GetByKey(ctx, "slug", "technology")
	require.NoError(t, err)
	assert.Equal(t, "Tech", got.Name)

	count, err := s.Tags.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestStore_SlugUniquenessAcrossCollections(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	story := domain.Story{Title: "Hello", Slug: "hello", Status: domain.StoryStatusDraft}
	story.ID = "story-1"
	require.NoError(t, s.Stories.Insert(ctx, &story))

	dupe := domain.Story{Title: "Hello Again", Slug: "hello", Status: domain.StoryStatusDraft}
	dupe.ID = "story-2"
	assert.ErrorIs(t, s.Stories.Insert(ctx, &dupe), apperrors.ErrAlreadyExists)
}

func TestStore_BookmarkPairUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := domain.Bookmark{UserID: "u1", StoryID: "s1"}
	b.ID = "bm-1"
	require.NoError(t, s.Bookmarks.Insert(ctx, &b))

	dupe := domain.Bookmark{UserID: "u1", StoryID: "s1"}
	dupe.ID = "bm-2"
	assert.ErrorIs(t, s.Bookmarks.Insert(ctx, &dupe), apperrors.ErrAlreadyExists)

	other := domain.Bookmark{UserID: "u1", StoryID: "s2"}
	other.ID = "bm-3"
	require.NoError(t, s.Bookmarks.Insert(ctx, &other))
}

func TestDrafts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	t.Run("missing draft", func(t *testing.T) {
		_, err := s.Drafts.Get(ctx, "author-1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("save and read back", func(t *testing.T) {
		draft := &Draft{Title: "WIP", Content: "<p>hello</p>", Tags: []string{"technology"}}
		require.NoError(t, s.Drafts.Save(ctx, "author-1", draft))
		assert.False(t, draft.SavedAt.IsZero())

		got, err := s.Drafts.Get(ctx, "author-1")
		require.NoError(t, err)
		assert.Equal(t, "WIP", got.Title)
		assert.Equal(t, []string{"technology"}, got.Tags)
	})

	t.Run("drafts are per author", func(t *testing.T) {
		_, err := s.Drafts.Get(ctx, "author-2")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("discard", func(t *testing.T) {
		require.NoError(t, s.Drafts.Discard(ctx, "author-1"))
		_, err := s.Drafts.Get(ctx, "author-1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		require.NoError(t, s.Drafts.Discard(ctx, "author-1"), "discard is idempotent")
	})
}
