package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storysphere/storysphere-server/internal/domain"
	"github.com/storysphere/storysphere-server/internal/service"
)

func (s *Server) registerBookmarkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks",
		Summary:     "List bookmarks",
		Description: "Returns the acting user's reading list",
		Tags:        []string{"Bookmarks"},
	}, s.handleListBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/bookmarks/{storyID}",
		Summary:     "Add bookmark",
		Description: "Bookmarks a story; re-adding is a no-op",
		Tags:        []string{"Bookmarks"},
	}, s.handleAddBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleBookmark",
		Method:      http.MethodPost,
		Path:        "/api/v1/bookmarks/{storyID}/toggle",
		Summary:     "Toggle bookmark",
		Description: "Flips the bookmark optimistically; repeated toggles during the settle window are rejected",
		Tags:        []string{"Bookmarks"},
	}, s.handleToggleBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookmarkStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks/{storyID}",
		Summary:     "Get bookmark status",
		Description: "Reports whether the acting user bookmarked the story and how many users did",
		Tags:        []string{"Bookmarks"},
	}, s.handleGetBookmarkStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookmark",
		Method:      http.MethodDelete,
		Path:        "/api/v1/bookmarks/{storyID}",
		Summary:     "Remove bookmark",
		Description: "Removes a story from the reading list; removing an absent bookmark is a no-op",
		Tags:        []string{"Bookmarks"},
	}, s.handleRemoveBookmark)
}

// === DTOs ===

type ListBookmarksInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
}

type ListBookmarksResponse struct {
	Stories []service.StoryView `json:"stories" doc:"Bookmarked stories, most recently saved first"`
}

type ListBookmarksOutput struct {
	Body ListBookmarksResponse
}

type BookmarkInput struct {
	UserID  string `header:"X-User-Id" doc:"Acting user ID"`
	StoryID string `path:"storyID" doc:"Story ID"`
}

type BookmarkOutput struct {
	Body domain.Bookmark
}

type ToggleBookmarkResponse struct {
	IsBookmarked bool   `json:"isBookmarked" doc:"Whether the story is bookmarked after the toggle"`
	Count        int    `json:"count" doc:"Total bookmarks on the story after the toggle"`
	State        string `json:"state" doc:"Mutation state, always pending on response"`
}

type ToggleBookmarkOutput struct {
	Body ToggleBookmarkResponse
}

type BookmarkStatusResponse struct {
	IsBookmarked bool `json:"isBookmarked" doc:"Whether the acting user bookmarked the story"`
	Count        int  `json:"count" doc:"Total bookmarks on the story"`
}

type BookmarkStatusOutput struct {
	Body BookmarkStatusResponse
}

// === Handlers ===

func (s *Server) handleListBookmarks(ctx context.Context, input *ListBookmarksInput) (*ListBookmarksOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	stories, err := s.services.Bookmark.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ListBookmarksOutput{Body: ListBookmarksResponse{Stories: stories}}, nil
}

func (s *Server) handleAddBookmark(ctx context.Context, input *BookmarkInput) (*BookmarkOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	bookmark, err := s.services.Bookmark.Add(ctx, userID, input.StoryID)
	if err != nil {
		return nil, err
	}
	return &BookmarkOutput{Body: *bookmark}, nil
}

func (s *Server) handleToggleBookmark(ctx context.Context, input *BookmarkInput) (*ToggleBookmarkOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	state, _, err := s.services.Bookmark.Toggle(ctx, userID, input.StoryID)
	if err != nil {
		return nil, err
	}
	return &ToggleBookmarkOutput{Body: ToggleBookmarkResponse{
		IsBookmarked: state.IsBookmarked,
		Count:        state.Count,
		State:        "pending",
	}}, nil
}

func (s *Server) handleGetBookmarkStatus(ctx context.Context, input *BookmarkInput) (*BookmarkStatusOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	marked, err := s.services.Bookmark.IsBookmarked(ctx, userID, input.StoryID)
	if err != nil {
		return nil, err
	}
	count, err := s.services.Bookmark.CountForStory(ctx, input.StoryID)
	if err != nil {
		return nil, err
	}
	return &BookmarkStatusOutput{Body: BookmarkStatusResponse{IsBookmarked: marked, Count: count}}, nil
}

func (s *Server) handleRemoveBookmark(ctx context.Context, input *BookmarkInput) (*MessageOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.services.Bookmark.Remove(ctx, userID, input.StoryID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Bookmark removed"}}, nil
}
