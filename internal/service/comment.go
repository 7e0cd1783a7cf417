package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/storysphere/storysphere-server/internal/analytics"
	"github.com/storysphere/storysphere-server/internal/domain"
	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/id"
	"github.com/storysphere/storysphere-server/internal/optimistic"
	"github.com/storysphere/storysphere-server/internal/store"
)

// maxReplyDepth is the deepest level a new reply may occupy: replies to
// top-level comments and replies to those replies, nothing further.
const maxReplyDepth = 2

// CommentService manages discussion threads under stories. New replies
// nest at most two levels below a top-level comment; deleting a comment
// takes its whole subtree.
type CommentService struct {
	store     *store.Store
	analytics *analytics.Analytics
	likes     *optimistic.Toggle[Engagement]
	logger    *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(st *store.Store, an *analytics.Analytics, logger *slog.Logger) *CommentService {
	return &CommentService{
		store:     st,
		analytics: an,
		likes:     optimistic.New[Engagement](toggleCooldown, logger),
		logger:    logger,
	}
}

// CreateCommentInput is the payload for posting a comment.
type CreateCommentInput struct {
	Content  string `json:"content" validate:"required,min=1,max=2000"`
	ParentID string `json:"parentId,omitempty"`
}

// UpdateCommentInput is the payload for editing a comment.
type UpdateCommentInput struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// Thread returns the story's comments as a nested tree for the viewer.
func (s *CommentService) Thread(ctx context.Context, viewerID, storyID string) ([]*domain.CommentNode, error) {
	if _, err := s.store.Stories.GetByID(ctx, storyID); err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.Find(ctx, func(c *domain.Comment) bool { return c.StoryID == storyID })
	if err != nil {
		return nil, err
	}
	return domain.BuildThread(comments, viewerID), nil
}

// Create posts a comment. A reply must name a parent on the same story
// and may not nest deeper than maxReplyDepth.
func (s *CommentService) Create(ctx context.Context, authorID, storyID string, input CreateCommentInput) (*domain.Comment, error) {
	author, err := s.store.Users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Stories.GetByID(ctx, storyID); err != nil {
		return nil, err
	}

	if input.ParentID != "" {
		parent, err := s.store.Comments.GetByID(ctx, input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.StoryID != storyID {
			return nil, apperrors.Validation("parent comment belongs to a different story")
		}
		depth, err := s.depthOf(ctx, parent)
		if err != nil {
			return nil, err
		}
		if depth+1 > maxReplyDepth {
			return nil, apperrors.Validation("replies cannot nest more than two levels deep")
		}
	}

	comment := domain.Comment{
		StoryID:     storyID,
		ParentID:    input.ParentID,
		AuthorID:    author.ID,
		AuthorName:  author.DisplayName(),
		AuthorColor: author.AvatarColor,
		Content:     strings.TrimSpace(input.Content),
	}
	comment.ID = id.MustGenerate("comment")
	comment.InitTimestamps()

	if err := s.store.Comments.Insert(ctx, &comment); err != nil {
		return nil, err
	}
	if err := s.adjustCommentCount(ctx, storyID, 1); err != nil && s.logger != nil {
		s.logger.Warn("failed to bump comment count", "story_id", storyID, "error", err)
	}

	if s.analytics != nil {
		if aerr := s.analytics.Record(ctx, analytics.EventComment, storyID, authorID); aerr != nil && s.logger != nil {
			s.logger.Warn("failed to record comment event", "story_id", storyID, "error", aerr)
		}
	}
	return &comment, nil
}

// depthOf counts the ancestors above a comment. A missing ancestor ends
// the chain, matching the thread projection's promotion of orphaned
// replies to top level.
func (s *CommentService) depthOf(ctx context.Context, c *domain.Comment) (int, error) {
	depth := 0
	for c.ParentID != "" {
		parent, err := s.store.Comments.GetByID(ctx, c.ParentID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				break
			}
			return 0, err
		}
		depth++
		c = parent
	}
	return depth, nil
}

// Update edits a comment's text. Only the author may edit.
func (s *CommentService) Update(ctx context.Context, authorID, commentID string, input UpdateCommentInput) (*domain.Comment, error) {
	comment, err := s.store.Comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != authorID {
		return nil, apperrors.Forbidden("only the author can edit this comment")
	}

	comment.Content = strings.TrimSpace(input.Content)
	comment.Touch()

	if err := s.store.Comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment and every reply beneath it, then corrects
// the story's comment count. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, authorID, commentID string) error {
	comment, err := s.store.Comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != authorID {
		return apperrors.Forbidden("only the author can delete this comment")
	}

	storyID := comment.StoryID
	removed := 0
	err = s.store.Comments.Mutate(ctx, func(comments []domain.Comment) ([]domain.Comment, error) {
		doomed := make(map[string]bool)
		for _, id := range domain.CollectThreadIDs(comments, commentID) {
			doomed[id] = true
		}
		kept := comments[:0]
		for i := range comments {
			if doomed[comments[i].ID] {
				continue
			}
			kept = append(kept, comments[i])
		}
		removed = len(comments) - len(kept)
		return kept, nil
	})
	if err != nil {
		return err
	}

	if err := s.adjustCommentCount(ctx, storyID, -removed); err != nil && s.logger != nil {
		s.logger.Warn("failed to correct comment count", "story_id", storyID, "error", err)
	}
	return nil
}

// ToggleLike flips the viewer's like on a comment optimistically, same
// contract as story likes.
func (s *CommentService) ToggleLike(ctx context.Context, viewerID, commentID string) (Engagement, <-chan optimistic.Settled[Engagement], error) {
	if viewerID == "" {
		return Engagement{}, nil, apperrors.Validation("a user is required to like a comment")
	}
	comment, err := s.store.Comments.GetByID(ctx, commentID)
	if err != nil {
		return Engagement{}, nil, err
	}

	prev := Engagement{Likes: comment.Likes, IsLiked: comment.LikedByUser(viewerID)}
	next := Engagement{IsLiked: !prev.IsLiked}
	if next.IsLiked {
		next.Likes = prev.Likes + 1
	} else {
		next.Likes = max(0, prev.Likes-1)
	}

	persist := func(ctx context.Context, state Engagement) error {
		return s.writeLike(ctx, commentID, viewerID, state.IsLiked)
	}
	revert := func(ctx context.Context, state Engagement) error {
		return s.writeLike(ctx, commentID, viewerID, state.IsLiked)
	}

	return s.likes.Apply(ctx, commentID+"/"+viewerID, prev, next, persist, revert)
}

func (s *CommentService) writeLike(ctx context.Context, commentID, viewerID string, liked bool) error {
	return s.store.Comments.Mutate(ctx, func(comments []domain.Comment) ([]domain.Comment, error) {
		for i := range comments {
			if comments[i].ID != commentID {
				continue
			}
			if liked {
				comments[i].AddLike(viewerID)
			} else {
				comments[i].RemoveLike(viewerID)
			}
		}
		return comments, nil
	})
}

// adjustCommentCount shifts a story's denormalized comment counter.
func (s *CommentService) adjustCommentCount(ctx context.Context, storyID string, delta int) error {
	if delta == 0 {
		return nil
	}
	return s.store.Stories.Mutate(ctx, func(stories []domain.Story) ([]domain.Story, error) {
		for i := range stories {
			if stories[i].ID == storyID {
				stories[i].CommentCount = max(0, stories[i].CommentCount+delta)
				stories[i].UpdatedAt = time.Now()
			}
		}
		return stories, nil
	})
}
