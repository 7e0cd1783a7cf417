package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storysphere/storysphere-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchStories",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search stories",
		Description: "Full-text search over published stories",
		Tags:        []string{"Search"},
	}, s.handleSearchStories)
}

// === DTOs ===

type SearchStoriesInput struct {
	Query     string   `query:"q" doc:"Search terms"`
	Tags      []string `query:"tag" doc:"Filter by tag slugs, any match"`
	AuthorID  string   `query:"author" doc:"Filter by author ID"`
	SortBy    string   `query:"sort" enum:"recent,popular," doc:"Sort order, relevance by default"`
	Limit     int      `query:"limit" minimum:"0" maximum:"50" doc:"Page size"`
	Offset    int      `query:"offset" minimum:"0" doc:"Page offset"`
	Highlight bool     `query:"highlight" doc:"Include match highlights"`
}

type SearchStoriesOutput struct {
	Body search.Result
}

// === Handlers ===

func (s *Server) handleSearchStories(ctx context.Context, input *SearchStoriesInput) (*SearchStoriesOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.Tags = input.Tags
	params.AuthorID = input.AuthorID
	params.SortBy = input.SortBy
	params.Highlight = input.Highlight
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchStoriesOutput{Body: *result}, nil
}
