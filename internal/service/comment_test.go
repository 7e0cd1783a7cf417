package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/storysphere/storysphere-server/internal/errors"
)

func TestCommentCreateAndThread(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Discussed")

	top, err := e.comments.Create(ctx, "user-2", story.ID, CreateCommentInput{Content: "Great piece."})
	require.NoError(t, err)
	assert.Equal(t, "James Okafor", top.AuthorName)

	reply, err := e.comments.Create(ctx, "user-1", story.ID, CreateCommentInput{
		Content:  "Thanks for reading!",
		ParentID: top.ID,
	})
	require.NoError(t, err)

	thread, err := e.comments.Thread(ctx, "user-1", story.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Replies, 1)
	assert.Equal(t, reply.ID, thread[0].Replies[0].ID)

	view, err := e.stories.Get(ctx, "", story.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.CommentCount)
}

func TestCommentCreate_ParentOnOtherStory(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	first := e.publish(t, "user-1", "First Story")
	second := e.publish(t, "user-1", "Second Story")

	parent, err := e.comments.Create(ctx, "user-2", first.ID, CreateCommentInput{Content: "on first"})
	require.NoError(t, err)

	_, err = e.comments.Create(ctx, "user-2", second.ID, CreateCommentInput{
		Content:  "crossed wires",
		ParentID: parent.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCommentCreate_ReplyDepthCapped(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Deep Thread")

	top, err := e.comments.Create(ctx, "user-2", story.ID, CreateCommentInput{Content: "root"})
	require.NoError(t, err)
	reply, err := e.comments.Create(ctx, "user-1", story.ID, CreateCommentInput{
		Content:  "first level",
		ParentID: top.ID,
	})
	require.NoError(t, err)
	nested, err := e.comments.Create(ctx, "user-2", story.ID, CreateCommentInput{
		Content:  "second level",
		ParentID: reply.ID,
	})
	require.NoError(t, err)

	_, err = e.comments.Create(ctx, "user-1", story.ID, CreateCommentInput{
		Content:  "one level too far",
		ParentID: nested.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCommentUpdate_AuthorOnly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Edited Thread")

	comment, err := e.comments.Create(ctx, "user-2", story.ID, CreateCommentInput{Content: "typo hree"})
	require.NoError(t, err)

	updated, err := e.comments.Update(ctx, "user-2", comment.ID, UpdateCommentInput{Content: "typo here"})
	require.NoError(t, err)
	assert.Equal(t, "typo here", updated.Content)

	_, err = e.comments.Update(ctx, "user-1", comment.ID, UpdateCommentInput{Content: "not yours"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestCommentDelete_CascadesReplies(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Pruned Thread")

	top, err := e.comments.Create(ctx, "user-2", story.ID, CreateCommentInput{Content: "root"})
	require.NoError(t, err)
	reply, err := e.comments.Create(ctx, "user-1", story.ID, CreateCommentInput{Content: "reply", ParentID: top.ID})
	require.NoError(t, err)
	_, err = e.comments.Create(ctx, "user-2", story.ID, CreateCommentInput{Content: "nested", ParentID: reply.ID})
	require.NoError(t, err)
	other, err := e.comments.Create(ctx, "user-1", story.ID, CreateCommentInput{Content: "unrelated"})
	require.NoError(t, err)

	require.NoError(t, e.comments.Delete(ctx, "user-2", top.ID))

	thread, err := e.comments.Thread(ctx, "", story.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, other.ID, thread[0].ID)

	view, err := e.stories.Get(ctx, "", story.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CommentCount)
}

func TestCommentDelete_AuthorOnly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Protected Thread")

	comment, err := e.comments.Create(ctx, "user-2", story.ID, CreateCommentInput{Content: "mine"})
	require.NoError(t, err)

	err = e.comments.Delete(ctx, "user-1", comment.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestCommentToggleLike(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	story := e.publish(t, "user-1", "Liked Thread")

	comment, err := e.comments.Create(ctx, "user-2", story.ID, CreateCommentInput{Content: "insightful"})
	require.NoError(t, err)

	engagement, settled, err := e.comments.ToggleLike(ctx, "user-1", comment.ID)
	require.NoError(t, err)
	assert.True(t, engagement.IsLiked)
	assert.Equal(t, 1, engagement.Likes)

	outcome := <-settled
	require.True(t, outcome.Committed)

	thread, err := e.comments.Thread(ctx, "user-1", story.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.True(t, thread[0].IsLiked)
	assert.Equal(t, 1, thread[0].Likes)
}
