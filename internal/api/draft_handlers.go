package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storysphere/storysphere-server/internal/store"
)

func (s *Server) registerDraftRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDraft",
		Method:      http.MethodGet,
		Path:        "/api/v1/drafts/me",
		Summary:     "Get draft",
		Description: "Returns the acting user's work-in-progress draft",
		Tags:        []string{"Drafts"},
	}, s.handleGetDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveDraft",
		Method:      http.MethodPut,
		Path:        "/api/v1/drafts/me",
		Summary:     "Save draft",
		Description: "Persists the acting user's draft immediately",
		Tags:        []string{"Drafts"},
	}, s.handleSaveDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "stageDraft",
		Method:      http.MethodPost,
		Path:        "/api/v1/drafts/me/autosave",
		Summary:     "Stage draft for autosave",
		Description: "Holds the draft in memory until the next autosave tick",
		Tags:        []string{"Drafts"},
	}, s.handleStageDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "discardDraft",
		Method:      http.MethodDelete,
		Path:        "/api/v1/drafts/me",
		Summary:     "Discard draft",
		Description: "Drops the acting user's draft, staged and persisted",
		Tags:        []string{"Drafts"},
	}, s.handleDiscardDraft)
}

// === DTOs ===

type DraftInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
}

type DraftRequest struct {
	StoryID  string   `json:"storyId,omitempty" doc:"Story being edited, empty for a new piece"`
	Title    string   `json:"title" doc:"Draft title"`
	Subtitle string   `json:"subtitle,omitempty" doc:"Draft subtitle"`
	Content  string   `json:"content" doc:"Draft content"`
	Tags     []string `json:"tags,omitempty" doc:"Tag slugs"`
}

type SaveDraftInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
	Body   DraftRequest
}

type DraftOutput struct {
	Body store.Draft
}

// === Handlers ===

func (s *Server) handleGetDraft(ctx context.Context, input *DraftInput) (*DraftOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	draft, err := s.services.Draft.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &DraftOutput{Body: *draft}, nil
}

func (s *Server) handleSaveDraft(ctx context.Context, input *SaveDraftInput) (*DraftOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	draft, err := s.services.Draft.Save(ctx, userID, store.Draft{
		StoryID:  input.Body.StoryID,
		Title:    input.Body.Title,
		Subtitle: input.Body.Subtitle,
		Content:  input.Body.Content,
		Tags:     input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}
	return &DraftOutput{Body: *draft}, nil
}

func (s *Server) handleStageDraft(ctx context.Context, input *SaveDraftInput) (*MessageOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	s.services.Draft.Stage(userID, store.Draft{
		StoryID:  input.Body.StoryID,
		Title:    input.Body.Title,
		Subtitle: input.Body.Subtitle,
		Content:  input.Body.Content,
		Tags:     input.Body.Tags,
	})
	return &MessageOutput{Body: MessageResponse{Message: "Draft staged"}}, nil
}

func (s *Server) handleDiscardDraft(ctx context.Context, input *DraftInput) (*MessageOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Draft.Discard(ctx, userID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Draft discarded"}}, nil
}
