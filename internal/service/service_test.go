package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/storysphere/storysphere-server/internal/analytics"
	"github.com/storysphere/storysphere-server/internal/domain"
	"github.com/storysphere/storysphere-server/internal/kv"
	"github.com/storysphere/storysphere-server/internal/latency"
	"github.com/storysphere/storysphere-server/internal/search"
	"github.com/storysphere/storysphere-server/internal/store"
)

// env wires every service over an in-memory adapter, an in-memory
// search index, and a throwaway analytics database.
type env struct {
	store     *store.Store
	index     *search.StoryIndex
	analytics *analytics.Analytics

	stories   *StoryService
	tags      *TagService
	users     *UserService
	bookmarks *BookmarkService
	comments  *CommentService
	drafts    *DraftService
}

func newEnv(t *testing.T) *env {
	return newEnvWithGate(t, 0)
}

// newEnvWithGate adds an artificial store delay so tests can observe
// the window between an optimistic flip and its durable write.
func newEnvWithGate(t *testing.T, delay time.Duration) *env {
	t.Helper()
	ctx := context.Background()

	st := store.New(kv.NewMemory(), latency.NewGate(delay), nil)
	require.NoError(t, st.EnsureDefaultTags(ctx))

	index, err := search.NewMemoryStoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	an, err := analytics.Open(filepath.Join(t.TempDir(), "analytics.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = an.Close() })

	tags := NewTagService(st, nil)
	e := &env{
		store:     st,
		index:     index,
		analytics: an,
		tags:      tags,
		stories:   NewStoryService(st, index, an, tags, nil),
		users:     NewUserService(st, an, nil),
		bookmarks: NewBookmarkService(st, an, nil),
		comments:  NewCommentService(st, an, nil),
		drafts:    NewDraftService(st, 0, nil),
	}

	e.addUser(t, "user-1", "Sarah Mitchell", "sarahwrites")
	e.addUser(t, "user-2", "James Okafor", "jokafor")
	return e
}

func (e *env) addUser(t *testing.T, userID, name, username string) {
	t.Helper()
	user := domain.User{Name: name, Username: username}
	user.ID = userID
	user.InitTimestamps()
	require.NoError(t, e.store.Users.Insert(context.Background(), &user))
}

// publish creates and publishes a story in one step.
func (e *env) publish(t *testing.T, authorID, title string, tags ...string) *StoryView {
	t.Helper()
	view, err := e.stories.Create(context.Background(), authorID, CreateStoryInput{
		Title:   title,
		Content: "<p>Body of " + title + "</p>",
		Tags:    tags,
		Publish: true,
	})
	require.NoError(t, err)
	return view
}
