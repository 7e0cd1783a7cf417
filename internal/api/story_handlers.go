package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storysphere/storysphere-server/internal/service"
)

func (s *Server) registerStoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listStories",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories",
		Summary:     "List stories",
		Description: "Returns stories filtered by status, tag, or author",
		Tags:        []string{"Stories"},
	}, s.handleListStories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createStory",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories",
		Summary:     "Create story",
		Description: "Creates a new story as a draft, optionally publishing it",
		Tags:        []string{"Stories"},
	}, s.handleCreateStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStory",
		Method:      http.MethodGet,
		Path:        "/api/v1/stories/{idOrSlug}",
		Summary:     "Get story",
		Description: "Returns a story by ID or slug",
		Tags:        []string{"Stories"},
	}, s.handleGetStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateStory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/stories/{idOrSlug}",
		Summary:     "Update story",
		Description: "Updates a story; only the author may edit",
		Tags:        []string{"Stories"},
	}, s.handleUpdateStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteStory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/stories/{idOrSlug}",
		Summary:     "Delete story",
		Description: "Deletes a story with its comments and bookmarks",
		Tags:        []string{"Stories"},
	}, s.handleDeleteStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "publishStory",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/{idOrSlug}/publish",
		Summary:     "Publish story",
		Description: "Transitions a draft to published",
		Tags:        []string{"Stories"},
	}, s.handlePublishStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordStoryView",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/{idOrSlug}/view",
		Summary:     "Record story view",
		Description: "Increments the story's view counter",
		Tags:        []string{"Stories"},
	}, s.handleRecordStoryView)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleStoryLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/{idOrSlug}/like",
		Summary:     "Toggle story like",
		Description: "Flips the viewer's like; the response reflects the optimistic state",
		Tags:        []string{"Stories"},
	}, s.handleToggleStoryLike)
}

// === DTOs ===

type ListStoriesInput struct {
	UserID   string `header:"X-User-Id" doc:"Acting user ID"`
	Status   string `query:"status" enum:"draft,published," doc:"Filter by status"`
	Tag      string `query:"tag" doc:"Filter by tag slug"`
	AuthorID string `query:"author" doc:"Filter by author ID"`
	SortBy   string `query:"sort" enum:"recent,popular,views," doc:"Sort order"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size"`
	Offset   int    `query:"offset" minimum:"0" doc:"Page offset"`
}

type ListStoriesResponse struct {
	Stories []service.StoryView `json:"stories" doc:"Matching stories"`
}

type ListStoriesOutput struct {
	Body ListStoriesResponse
}

type CreateStoryInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
	Body   service.CreateStoryInput
}

type StoryOutput struct {
	Body service.StoryView
}

type GetStoryInput struct {
	UserID   string `header:"X-User-Id" doc:"Acting user ID"`
	IDOrSlug string `path:"idOrSlug" doc:"Story ID or slug"`
}

type UpdateStoryInput struct {
	UserID   string `header:"X-User-Id" doc:"Acting user ID"`
	IDOrSlug string `path:"idOrSlug" doc:"Story ID or slug"`
	Body     service.UpdateStoryInput
}

type EngagementResponse struct {
	Likes   int    `json:"likes" doc:"Like count after the flip"`
	IsLiked bool   `json:"isLiked" doc:"Whether the viewer now likes it"`
	State   string `json:"state" doc:"Mutation state, pending until the write settles"`
}

type EngagementOutput struct {
	Body EngagementResponse
}

// === Handlers ===

func (s *Server) handleListStories(ctx context.Context, input *ListStoriesInput) (*ListStoriesOutput, error) {
	stories, err := s.services.Story.List(ctx, input.UserID, service.ListStoriesParams{
		Status:   input.Status,
		Tag:      input.Tag,
		AuthorID: input.AuthorID,
		SortBy:   input.SortBy,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListStoriesOutput{Body: ListStoriesResponse{Stories: stories}}, nil
}

func (s *Server) handleCreateStory(ctx context.Context, input *CreateStoryInput) (*StoryOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	view, err := s.services.Story.Create(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &StoryOutput{Body: *view}, nil
}

func (s *Server) handleGetStory(ctx context.Context, input *GetStoryInput) (*StoryOutput, error) {
	view, err := s.services.Story.Get(ctx, input.UserID, input.IDOrSlug)
	if err != nil {
		return nil, err
	}
	return &StoryOutput{Body: *view}, nil
}

func (s *Server) handleUpdateStory(ctx context.Context, input *UpdateStoryInput) (*StoryOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	view, err := s.services.Story.Update(ctx, userID, input.IDOrSlug, input.Body)
	if err != nil {
		return nil, err
	}
	return &StoryOutput{Body: *view}, nil
}

func (s *Server) handleDeleteStory(ctx context.Context, input *GetStoryInput) (*MessageOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Story.Delete(ctx, userID, input.IDOrSlug); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Story deleted"}}, nil
}

func (s *Server) handlePublishStory(ctx context.Context, input *GetStoryInput) (*StoryOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	view, err := s.services.Story.Publish(ctx, userID, input.IDOrSlug)
	if err != nil {
		return nil, err
	}
	return &StoryOutput{Body: *view}, nil
}

func (s *Server) handleRecordStoryView(ctx context.Context, input *GetStoryInput) (*MessageOutput, error) {
	if err := s.services.Story.RecordView(ctx, input.UserID, input.IDOrSlug); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "View recorded"}}, nil
}

func (s *Server) handleToggleStoryLike(ctx context.Context, input *GetStoryInput) (*EngagementOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	engagement, _, err := s.services.Story.ToggleLike(ctx, userID, input.IDOrSlug)
	if err != nil {
		return nil, err
	}
	return &EngagementOutput{Body: EngagementResponse{
		Likes:   engagement.Likes,
		IsLiked: engagement.IsLiked,
		State:   "pending",
	}}, nil
}
