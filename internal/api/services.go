package api

import (
	"github.com/storysphere/storysphere-server/internal/analytics"
	"github.com/storysphere/storysphere-server/internal/search"
	"github.com/storysphere/storysphere-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This keeps the NewServer signature manageable and eases testing.
type Services struct {
	Story    *service.StoryService
	Tag      *service.TagService
	User     *service.UserService
	Bookmark *service.BookmarkService
	Comment  *service.CommentService
	Draft    *service.DraftService

	Search    *search.StoryIndex
	Analytics *analytics.Analytics
}
