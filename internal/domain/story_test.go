package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryLikes(t *testing.T) {
	s := Story{Status: StoryStatusPublished}
	s.ID = "story-1"

	assert.True(t, s.AddLike("u1"))
	assert.True(t, s.AddLike("u2"))
	assert.False(t, s.AddLike("u1"), "duplicate like rejected")
	assert.Equal(t, 2, s.Likes)
	assert.True(t, s.LikedByUser("u1"))

	assert.True(t, s.RemoveLike("u1"))
	assert.Equal(t, 1, s.Likes)
	assert.False(t, s.LikedByUser("u1"))
	assert.False(t, s.RemoveLike("u1"))
}

func TestStoryPublish(t *testing.T) {
	s := Story{Status: StoryStatusDraft}
	s.InitTimestamps()
	require.False(t, s.IsPublished())
	require.Nil(t, s.PublishedAt)

	s.Publish()
	assert.True(t, s.IsPublished())
	require.NotNil(t, s.PublishedAt)
	first := *s.PublishedAt

	// Republishing keeps the original timestamp.
	s.Publish()
	assert.Equal(t, first, *s.PublishedAt)
}

func TestStoryStatusIsValid(t *testing.T) {
	assert.True(t, StoryStatusDraft.IsValid())
	assert.True(t, StoryStatusPublished.IsValid())
	assert.False(t, StoryStatus("archived").IsValid())
	assert.False(t, StoryStatus("").IsValid())
}

func TestBookmarkKey(t *testing.T) {
	b := Bookmark{UserID: "u1", StoryID: "s1"}
	assert.Equal(t, "u1/s1", b.Key())
	assert.Equal(t, b.Key(), BookmarkKey("u1", "s1"))
}
