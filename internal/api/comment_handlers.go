package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storysphere/storysphere-server/internal/domain"
	"github.com/storysphere/storysphere-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCommentThread",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{storyID}/comments",
		Summary:     "Get comment thread",
		Description: "Returns the story's comments as a nested tree",
		Tags:        []string{"Comments"},
	}, s.handleGetCommentThread)

	huma.Register(s.api, huma.Operation{
		OperationID: "createComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/{storyID}/comments",
		Summary:     "Create comment",
		Description: "Posts a comment or a reply on a story",
		Tags:        []string{"Comments"},
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateComment",
		Method:      http.MethodPatch,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Update comment",
		Description: "Edits a comment; only the author may edit",
		Tags:        []string{"Comments"},
	}, s.handleUpdateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete comment",
		Description: "Deletes a comment and every reply beneath it",
		Tags:        []string{"Comments"},
	}, s.handleDeleteComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleCommentLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/comments/{id}/like",
		Summary:     "Toggle comment like",
		Description: "Flips the viewer's like; the response reflects the optimistic state",
		Tags:        []string{"Comments"},
	}, s.handleToggleCommentLike)
}

// === DTOs ===

type CommentThreadInput struct {
	UserID  string `header:"X-User-Id" doc:"Acting user ID"`
	StoryID string `path:"storyID" doc:"Story ID"`
}

type CommentThreadResponse struct {
	Comments []*domain.CommentNode `json:"comments" doc:"Nested comment tree, newest top-level first"`
}

type CommentThreadOutput struct {
	Body CommentThreadResponse
}

type CreateCommentInput struct {
	UserID  string `header:"X-User-Id" doc:"Acting user ID"`
	StoryID string `path:"storyID" doc:"Story ID"`
	Body    service.CreateCommentInput
}

type CommentOutput struct {
	Body domain.Comment
}

type UpdateCommentInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
	ID     string `path:"id" doc:"Comment ID"`
	Body   service.UpdateCommentInput
}

type CommentIDInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
	ID     string `path:"id" doc:"Comment ID"`
}

// === Handlers ===

func (s *Server) handleGetCommentThread(ctx context.Context, input *CommentThreadInput) (*CommentThreadOutput, error) {
	thread, err := s.services.Comment.Thread(ctx, input.UserID, input.StoryID)
	if err != nil {
		return nil, err
	}
	return &CommentThreadOutput{Body: CommentThreadResponse{Comments: thread}}, nil
}

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	comment, err := s.services.Comment.Create(ctx, userID, input.StoryID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: *comment}, nil
}

func (s *Server) handleUpdateComment(ctx context.Context, input *UpdateCommentInput) (*CommentOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	comment, err := s.services.Comment.Update(ctx, userID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: *comment}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*MessageOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Comment.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Comment deleted"}}, nil
}

func (s *Server) handleToggleCommentLike(ctx context.Context, input *CommentIDInput) (*EngagementOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	engagement, _, err := s.services.Comment.ToggleLike(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &EngagementOutput{Body: EngagementResponse{
		Likes:   engagement.Likes,
		IsLiked: engagement.IsLiked,
		State:   "pending",
	}}, nil
}
