package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storysphere/storysphere-server/internal/domain"
	"github.com/storysphere/storysphere-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the tag catalog ordered by usage, optionally filtered by a search term",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Description: "Adds a tag to the catalog",
		Tags:        []string{"Tags"},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFeaturedTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/featured",
		Summary:     "List featured tags",
		Description: "Returns the featured subset of the catalog",
		Tags:        []string{"Tags"},
	}, s.handleListFeaturedTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPopularTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/popular",
		Summary:     "List popular tags",
		Description: "Returns the most used tags",
		Tags:        []string{"Tags"},
	}, s.handleListPopularTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{slug}",
		Summary:     "Get tag",
		Description: "Returns a tag by slug",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)
}

// === DTOs ===

type ListTagsInput struct {
	Search string `query:"search" doc:"Substring match on tag name or description"`
	Limit  int    `query:"limit" minimum:"0" maximum:"50" doc:"Maximum tags to return"`
	Offset int    `query:"offset" minimum:"0" doc:"Tags to skip"`
}

type ListTagsResponse struct {
	Tags []domain.Tag `json:"tags" doc:"Tag catalog"`
}

type ListTagsOutput struct {
	Body ListTagsResponse
}

type CreateTagInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
	Body   service.CreateTagInput
}

type TagOutput struct {
	Body domain.Tag
}

type ListPopularTagsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"50" doc:"Maximum tags to return"`
}

type GetTagInput struct {
	Slug string `path:"slug" doc:"Tag slug"`
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.Search(ctx, input.Search, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	if _, err := requireViewer(input.UserID); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	tag, err := s.services.Tag.Create(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: *tag}, nil
}

func (s *Server) handleListFeaturedTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.Featured(ctx)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}

func (s *Server) handleListPopularTags(ctx context.Context, input *ListPopularTagsInput) (*ListTagsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}
	tags, err := s.services.Tag.Popular(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	tag, err := s.services.Tag.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: *tag}, nil
}
