package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storysphere/storysphere-server/internal/domain"
	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/search"
)

func TestStoryCreate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	view, err := e.stories.Create(ctx, "user-1", CreateStoryInput{
		Title:    "The Quiet Machines",
		Subtitle: "  On robots that wait their turn ",
		Content:  "<p>Robots that listen before they speak.</p>",
		Tags:     []string{"technology"},
	})
	require.NoError(t, err)

	assert.Equal(t, "the-quiet-machines", view.Slug)
	assert.Equal(t, "On robots that wait their turn", view.Subtitle)
	assert.Equal(t, domain.StoryStatusDraft, view.Status)
	assert.Equal(t, "Sarah Mitchell", view.AuthorName)
	assert.NotEmpty(t, view.Excerpt)
	assert.NotContains(t, view.Excerpt, "<p>")
	assert.GreaterOrEqual(t, view.ReadTimeMinutes, 1)
	assert.Equal(t, "1 min read", view.ReadTime)
	assert.Equal(t, "0", view.ViewsLabel)
	assert.Nil(t, view.PublishedAt)
}

func TestStoryCreate_SlugCollision(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.publish(t, "user-1", "Same Title")
	_, err := e.stories.Create(ctx, "user-2", CreateStoryInput{
		Title:   "Same Title",
		Content: "<p>different body</p>",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyExists))
}

func TestStoryCreate_UnknownTag(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.stories.Create(ctx, "user-1", CreateStoryInput{
		Title:   "Tagged Wrong",
		Content: "<p>body</p>",
		Tags:    []string{"not-a-tag"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestStoryCreate_Markdown(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	view, err := e.stories.Create(ctx, "user-1", CreateStoryInput{
		Title:    "Written In Markdown",
		Content:  "# Heading\n\nSome **bold** prose.",
		Markdown: true,
	})
	require.NoError(t, err)
	assert.Contains(t, view.Content, "<h1")
	assert.Contains(t, view.Content, "<strong>bold</strong>")
}

func TestStoryGet_ByIDOrSlug(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	created := e.publish(t, "user-1", "Lookup Me")

	byID, err := e.stories.Get(ctx, "", created.ID)
	require.NoError(t, err)
	bySlug, err := e.stories.Get(ctx, "", "lookup-me")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, bySlug.ID)

	_, err = e.stories.Get(ctx, "", "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestStoryList_FiltersAndSort(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	a := e.publish(t, "user-1", "Alpha", "technology")
	e.publish(t, "user-2", "Beta", "design")
	_, err := e.stories.Create(ctx, "user-1", CreateStoryInput{Title: "Gamma Draft", Content: "<p>wip</p>"})
	require.NoError(t, err)

	published, err := e.stories.List(ctx, "", ListStoriesParams{Status: "published"})
	require.NoError(t, err)
	assert.Len(t, published, 2)

	tech, err := e.stories.List(ctx, "", ListStoriesParams{Tag: "technology"})
	require.NoError(t, err)
	require.Len(t, tech, 1)
	assert.Equal(t, a.ID, tech[0].ID)

	mine, err := e.stories.List(ctx, "", ListStoriesParams{AuthorID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, e.stories.RecordView(ctx, "user-2", a.ID))
	byViews, err := e.stories.List(ctx, "", ListStoriesParams{SortBy: "views"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, byViews[0].ID)
}

func TestStoryUpdate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	created := e.publish(t, "user-1", "Original Title")

	newTitle := "Revised Title"
	newBody := "<p>Entirely new body with more words in it.</p>"
	view, err := e.stories.Update(ctx, "user-1", created.ID, UpdateStoryInput{
		Title:   &newTitle,
		Content: &newBody,
	})
	require.NoError(t, err)
	assert.Equal(t, "revised-title", view.Slug)
	assert.Contains(t, view.Excerpt, "Entirely new body")

	// Old slug no longer resolves.
	_, err = e.stories.Get(ctx, "", "original-title")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestStoryUpdate_NotAuthor(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	created := e.publish(t, "user-1", "Owned Story")

	title := "Hijacked"
	_, err := e.stories.Update(ctx, "user-2", created.ID, UpdateStoryInput{Title: &title})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestStoryPublish(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	draft, err := e.stories.Create(ctx, "user-1", CreateStoryInput{Title: "Slow Burn", Content: "<p>body</p>"})
	require.NoError(t, err)
	require.False(t, draft.IsPublished())

	view, err := e.stories.Publish(ctx, "user-1", draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StoryStatusPublished, view.Status)
	require.NotNil(t, view.PublishedAt)
	firstPublished := *view.PublishedAt

	// Publishing again keeps the original timestamp.
	again, err := e.stories.Publish(ctx, "user-1", draft.ID)
	require.NoError(t, err)
	assert.True(t, again.PublishedAt.Equal(firstPublished))
}

func TestStoryDelete_Cascades(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Doomed Story")

	_, err := e.comments.Create(ctx, "user-2", story.ID, CreateCommentInput{Content: "first!"})
	require.NoError(t, err)
	_, err = e.bookmarks.Add(ctx, "user-2", story.ID)
	require.NoError(t, err)

	require.NoError(t, e.stories.Delete(ctx, "user-1", story.ID))

	_, err = e.stories.Get(ctx, "", story.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	comments, err := e.store.Comments.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, comments)

	marks, err := e.bookmarks.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestStoryRecordView(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Counted")

	require.NoError(t, e.stories.RecordView(ctx, "user-2", story.ID))
	require.NoError(t, e.stories.RecordView(ctx, "", story.ID))

	view, err := e.stories.Get(ctx, "", story.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Views)

	views, err := e.analytics.StoryViews(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, views)
}

func TestStoryToggleLike(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Likeable")

	engagement, settled, err := e.stories.ToggleLike(ctx, "user-2", story.ID)
	require.NoError(t, err)
	assert.True(t, engagement.IsLiked)
	assert.Equal(t, 1, engagement.Likes)

	outcome := <-settled
	require.True(t, outcome.Committed)

	view, err := e.stories.Get(ctx, "user-2", story.ID)
	require.NoError(t, err)
	assert.True(t, view.IsLiked)
	assert.Equal(t, 1, view.Likes)
}

func TestStoryToggleLike_UnlikeAfterCooldown(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Fickle")

	_, settled, err := e.stories.ToggleLike(ctx, "user-2", story.ID)
	require.NoError(t, err)
	<-settled

	// Immediate re-toggle is absorbed by the cooldown.
	_, _, err = e.stories.ToggleLike(ctx, "user-2", story.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	require.Eventually(t, func() bool {
		_, settled, err := e.stories.ToggleLike(ctx, "user-2", story.ID)
		if err != nil {
			return false
		}
		<-settled
		return true
	}, 2*time.Second, 50*time.Millisecond)

	view, err := e.stories.Get(ctx, "user-2", story.ID)
	require.NoError(t, err)
	assert.False(t, view.IsLiked)
	assert.Equal(t, 0, view.Likes)
}

func TestStoryToggleLike_AnalyticsWaitsForCommit(t *testing.T) {
	ctx := context.Background()
	e := newEnvWithGate(t, 75*time.Millisecond)
	story := e.publish(t, "user-1", "Counted Once")

	_, settled, err := e.stories.ToggleLike(ctx, "user-2", story.ID)
	require.NoError(t, err)

	// The durable write is still behind the gate; the dashboard must not
	// see the like yet.
	d, err := e.analytics.BuildDashboard(ctx, "7d")
	require.NoError(t, err)
	assert.Equal(t, 0, d.TotalLikes)

	outcome := <-settled
	require.True(t, outcome.Committed)

	d, err = e.analytics.BuildDashboard(ctx, "7d")
	require.NoError(t, err)
	assert.Equal(t, 1, d.TotalLikes)
}

func TestStoryToggleLike_AnonymousRejected(t *testing.T) {
	e := newEnv(t)
	story := e.publish(t, "user-1", "Members Only")

	_, _, err := e.stories.ToggleLike(context.Background(), "", story.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestStorySearchSync(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	story := e.publish(t, "user-1", "Deep Sea Mining")
	res, err := e.index.Search(ctx, search.Params{Query: "mining", Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, story.ID, res.Hits[0].ID)

	// Drafts are not searchable.
	_, err = e.stories.Create(ctx, "user-1", CreateStoryInput{Title: "Hidden Draft Mining", Content: "<p>mining too</p>"})
	require.NoError(t, err)
	res, err = e.index.Search(ctx, search.Params{Query: "mining", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 1)

	// Deleting removes the document.
	require.NoError(t, e.stories.Delete(ctx, "user-1", story.ID))
	res, err = e.index.Search(ctx, search.Params{Query: "mining", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestStoryReindex(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.publish(t, "user-1", "First Piece")
	e.publish(t, "user-1", "Second Piece")

	fresh, err := search.NewMemoryStoryIndex()
	require.NoError(t, err)
	defer fresh.Close()
	e.stories.index = fresh

	require.NoError(t, e.stories.Reindex(ctx))
	count, err := fresh.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestStoryTagCounts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.publish(t, "user-1", "Tech One", "technology")
	e.publish(t, "user-2", "Tech Two", "technology", "design")

	tag, err := e.tags.GetBySlug(ctx, "technology")
	require.NoError(t, err)
	assert.Equal(t, 2, tag.StoryCount)

	tag, err = e.tags.GetBySlug(ctx, "design")
	require.NoError(t, err)
	assert.Equal(t, 1, tag.StoryCount)

	// Deleting a published story releases its counters.
	require.NoError(t, e.stories.Delete(ctx, "user-2", "tech-two"))

	tag, err = e.tags.GetBySlug(ctx, "technology")
	require.NoError(t, err)
	assert.Equal(t, 1, tag.StoryCount)

	tag, err = e.tags.GetBySlug(ctx, "design")
	require.NoError(t, err)
	assert.Zero(t, tag.StoryCount)
}

func TestStoryTagCounts_UpdateDiffsTags(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	view := e.publish(t, "user-1", "Moving Targets", "technology")

	newTags := []string{"design"}
	_, err := e.stories.Update(ctx, "user-1", view.ID, UpdateStoryInput{Tags: &newTags})
	require.NoError(t, err)

	tag, err := e.tags.GetBySlug(ctx, "technology")
	require.NoError(t, err)
	assert.Zero(t, tag.StoryCount)

	tag, err = e.tags.GetBySlug(ctx, "design")
	require.NoError(t, err)
	assert.Equal(t, 1, tag.StoryCount)
}

func TestStoryTagCounts_RepublishDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	view := e.publish(t, "user-1", "Once Only", "science")

	_, err := e.stories.Publish(ctx, "user-1", view.ID)
	require.NoError(t, err)

	tag, err := e.tags.GetBySlug(ctx, "science")
	require.NoError(t, err)
	assert.Equal(t, 1, tag.StoryCount)
}
