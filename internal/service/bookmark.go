package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/storysphere/storysphere-server/internal/analytics"
	"github.com/storysphere/storysphere-server/internal/domain"
	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/id"
	"github.com/storysphere/storysphere-server/internal/optimistic"
	"github.com/storysphere/storysphere-server/internal/store"
)

// BookmarkState is the optimistic snapshot of one (user, story) pair.
type BookmarkState struct {
	IsBookmarked bool `json:"isBookmarked"`
	Count        int  `json:"count"`
}

// BookmarkService manages per-user reading lists. Add and Remove are
// both idempotent so clients can retry freely.
type BookmarkService struct {
	store     *store.Store
	analytics *analytics.Analytics
	toggles   *optimistic.Toggle[BookmarkState]
	logger    *slog.Logger
}

// NewBookmarkService creates a new bookmark service.
func NewBookmarkService(st *store.Store, an *analytics.Analytics, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{
		store:     st,
		analytics: an,
		toggles:   optimistic.New[BookmarkState](toggleCooldown, logger),
		logger:    logger,
	}
}

// Add bookmarks a story for a user. Re-adding an existing bookmark
// returns the existing record unchanged.
func (s *BookmarkService) Add(ctx context.Context, userID, storyID string) (*domain.Bookmark, error) {
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.store.Stories.GetByID(ctx, storyID); err != nil {
		return nil, err
	}

	bookmark := domain.Bookmark{UserID: userID, StoryID: storyID}
	bookmark.ID = id.MustGenerate("bm")
	bookmark.InitTimestamps()

	err := s.store.Bookmarks.Insert(ctx, &bookmark)
	if apperrors.Is(err, apperrors.ErrAlreadyExists) {
		return s.store.Bookmarks.GetByKey(ctx, "pair", bookmark.Key())
	}
	if err != nil {
		return nil, err
	}

	if s.analytics != nil {
		if aerr := s.analytics.Record(ctx, analytics.EventBookmark, storyID, userID); aerr != nil && s.logger != nil {
			s.logger.Warn("failed to record bookmark event", "story_id", storyID, "error", aerr)
		}
	}
	return &bookmark, nil
}

// Remove deletes the bookmark for a (user, story) pair. Removing an
// absent bookmark is a no-op.
func (s *BookmarkService) Remove(ctx context.Context, userID, storyID string) error {
	return s.store.Bookmarks.Mutate(ctx, func(bookmarks []domain.Bookmark) ([]domain.Bookmark, error) {
		key := domain.BookmarkKey(userID, storyID)
		kept := bookmarks[:0]
		for i := range bookmarks {
			if bookmarks[i].Key() != key {
				kept = append(kept, bookmarks[i])
			}
		}
		return kept, nil
	})
}

// List returns the user's bookmarked stories, most recently saved
// first. Bookmarks whose story has since been deleted are skipped.
func (s *BookmarkService) List(ctx context.Context, userID string) ([]StoryView, error) {
	marks, err := s.store.Bookmarks.Find(ctx, func(b *domain.Bookmark) bool { return b.UserID == userID })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].CreatedAt.After(marks[j].CreatedAt) })

	views := make([]StoryView, 0, len(marks))
	for i := range marks {
		story, err := s.store.Stories.GetByID(ctx, marks[i].StoryID)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, NewStoryView(*story, story.LikedByUser(userID), true))
	}
	return views, nil
}

// CountForStory returns how many users have bookmarked the story.
func (s *BookmarkService) CountForStory(ctx context.Context, storyID string) (int, error) {
	marks, err := s.store.Bookmarks.Find(ctx, func(b *domain.Bookmark) bool { return b.StoryID == storyID })
	if err != nil {
		return 0, err
	}
	return len(marks), nil
}

// Toggle flips the viewer's bookmark optimistically. The returned state
// reflects the flip immediately; the settled channel reports whether
// the durable write committed or was reverted. Since Add and Remove
// write absolute membership, the revert write is harmlessly idempotent.
func (s *BookmarkService) Toggle(ctx context.Context, userID, storyID string) (BookmarkState, <-chan optimistic.Settled[BookmarkState], error) {
	if userID == "" {
		return BookmarkState{}, nil, apperrors.Validation("a user is required to bookmark a story")
	}
	if _, err := s.store.Stories.GetByID(ctx, storyID); err != nil {
		return BookmarkState{}, nil, err
	}

	marked, err := s.IsBookmarked(ctx, userID, storyID)
	if err != nil {
		return BookmarkState{}, nil, err
	}
	count, err := s.CountForStory(ctx, storyID)
	if err != nil {
		return BookmarkState{}, nil, err
	}

	prev := BookmarkState{IsBookmarked: marked, Count: count}
	next := BookmarkState{IsBookmarked: !marked}
	if next.IsBookmarked {
		next.Count = prev.Count + 1
	} else {
		next.Count = max(0, prev.Count-1)
	}

	write := func(ctx context.Context, state BookmarkState) error {
		if state.IsBookmarked {
			_, err := s.Add(ctx, userID, storyID)
			return err
		}
		return s.Remove(ctx, userID, storyID)
	}

	return s.toggles.Apply(ctx, domain.BookmarkKey(userID, storyID), prev, next, write, write)
}

// IsBookmarked reports whether the user has bookmarked the story.
func (s *BookmarkService) IsBookmarked(ctx context.Context, userID, storyID string) (bool, error) {
	_, err := s.store.Bookmarks.GetByKey(ctx, "pair", domain.BookmarkKey(userID, storyID))
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
