package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/storysphere/storysphere-server/internal/analytics"
	"github.com/storysphere/storysphere-server/internal/content"
	"github.com/storysphere/storysphere-server/internal/domain"
	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/id"
	"github.com/storysphere/storysphere-server/internal/optimistic"
	"github.com/storysphere/storysphere-server/internal/search"
	"github.com/storysphere/storysphere-server/internal/slug"
	"github.com/storysphere/storysphere-server/internal/store"
)

// excerptLength caps derived story previews.
const excerptLength = 200

// toggleCooldown absorbs double-clicks after a toggle settles.
const toggleCooldown = 300 * time.Millisecond

// Engagement is the optimistic like snapshot for one (story, user) pair.
type Engagement struct {
	Likes   int  `json:"likes"`
	IsLiked bool `json:"isLiked"`
}

// StoryView is a story projected for one viewer, with display labels
// derived for the client.
type StoryView struct {
	domain.Story
	IsLiked      bool   `json:"isLiked"`
	IsBookmarked bool   `json:"isBookmarked"`
	ReadTime     string `json:"readTime"`
	ViewsLabel   string `json:"viewsLabel"`
}

// NewStoryView builds the viewer projection of a story.
func NewStoryView(story domain.Story, isLiked, isBookmarked bool) StoryView {
	return StoryView{
		Story:        story,
		IsLiked:      isLiked,
		IsBookmarked: isBookmarked,
		ReadTime:     content.FormatReadTime(story.ReadTimeMinutes),
		ViewsLabel:   content.FormatCount(story.Views),
	}
}

// StoryService owns the story lifecycle: authoring, publication,
// engagement, and keeping the search index in step.
type StoryService struct {
	store     *store.Store
	index     *search.StoryIndex
	analytics *analytics.Analytics
	tags      *TagService
	likes     *optimistic.Toggle[Engagement]
	logger    *slog.Logger
}

// NewStoryService creates a new story service.
func NewStoryService(st *store.Store, index *search.StoryIndex, an *analytics.Analytics, tags *TagService, logger *slog.Logger) *StoryService {
	return &StoryService{
		store:     st,
		index:     index,
		analytics: an,
		tags:      tags,
		likes:     optimistic.New[Engagement](toggleCooldown, logger),
		logger:    logger,
	}
}

// CreateStoryInput is the payload for writing a story.
type CreateStoryInput struct {
	Title      string   `json:"title" validate:"required,min=3,max=200"`
	Subtitle   string   `json:"subtitle" validate:"max=300"`
	Content    string   `json:"content" validate:"required"`
	CoverImage string   `json:"coverImage" validate:"omitempty,url"`
	Tags       []string `json:"tags" validate:"max=5,dive,min=1"`
	Markdown   bool     `json:"markdown"`
	Publish    bool     `json:"publish"`
}

// UpdateStoryInput is the payload for editing a story. Nil fields are
// left unchanged; a new title regenerates the slug.
type UpdateStoryInput struct {
	Title      *string   `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Subtitle   *string   `json:"subtitle,omitempty" validate:"omitempty,max=300"`
	Content    *string   `json:"content,omitempty"`
	CoverImage *string   `json:"coverImage,omitempty" validate:"omitempty,url"`
	Tags       *[]string `json:"tags,omitempty" validate:"omitempty,max=5,dive,min=1"`
	Markdown   bool      `json:"markdown"`
}

// ListStoriesParams filters and orders story listings.
type ListStoriesParams struct {
	Status   string // "draft", "published", empty = all
	Tag      string // tag slug
	AuthorID string
	SortBy   string // "recent" (default), "popular", "views"
	Limit    int
	Offset   int
}

// List returns stories for a viewer, filtered and sorted.
func (s *StoryService) List(ctx context.Context, viewerID string, params ListStoriesParams) ([]StoryView, error) {
	stories, err := s.store.Stories.Find(ctx, func(st *domain.Story) bool {
		if params.Status != "" && string(st.Status) != params.Status {
			return false
		}
		if params.Tag != "" && !st.HasTag(params.Tag) {
			return false
		}
		if params.AuthorID != "" && st.AuthorID != params.AuthorID {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	switch params.SortBy {
	case "popular":
		sort.SliceStable(stories, func(i, j int) bool { return stories[i].Likes > stories[j].Likes })
	case "views":
		sort.SliceStable(stories, func(i, j int) bool { return stories[i].Views > stories[j].Views })
	default:
		sort.SliceStable(stories, func(i, j int) bool { return stories[i].CreatedAt.After(stories[j].CreatedAt) })
	}

	if params.Offset > 0 {
		if params.Offset >= len(stories) {
			stories = nil
		} else {
			stories = stories[params.Offset:]
		}
	}
	if params.Limit > 0 && len(stories) > params.Limit {
		stories = stories[:params.Limit]
	}

	return s.project(ctx, viewerID, stories)
}

// Feed returns the published stories, newest first.
func (s *StoryService) Feed(ctx context.Context, viewerID string, limit, offset int) ([]StoryView, error) {
	return s.List(ctx, viewerID, ListStoriesParams{
		Status: string(domain.StoryStatusPublished),
		Limit:  limit,
		Offset: offset,
	})
}

// Get resolves a story by ID or slug, either works.
func (s *StoryService) Get(ctx context.Context, viewerID, idOrSlug string) (*StoryView, error) {
	story, err := s.find(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	views, err := s.project(ctx, viewerID, []domain.Story{*story})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create writes a new story. Markdown submissions are rendered to HTML
// first; excerpt and read time are derived from the content.
func (s *StoryService) Create(ctx context.Context, authorID string, input CreateStoryInput) (*StoryView, error) {
	author, err := s.store.Users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	body := input.Content
	if input.Markdown {
		body, err = content.RenderMarkdown(input.Content)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeValidation, "invalid markdown")
		}
	}

	storySlug := slug.Make(input.Title)
	if storySlug == "" {
		return nil, apperrors.Validation("title produces an empty slug")
	}
	if err := s.validateTags(ctx, input.Tags); err != nil {
		return nil, err
	}

	story := domain.Story{
		Title:           strings.TrimSpace(input.Title),
		Subtitle:        strings.TrimSpace(input.Subtitle),
		Slug:            storySlug,
		Content:         body,
		Excerpt:         content.Excerpt(body, excerptLength),
		CoverImage:      input.CoverImage,
		AuthorID:        author.ID,
		AuthorName:      author.DisplayName(),
		Status:          domain.StoryStatusDraft,
		Tags:            input.Tags,
		ReadTimeMinutes: content.ReadTimeMinutes(body),
	}
	story.ID = id.MustGenerate("story")
	story.InitTimestamps()
	if input.Publish {
		story.Publish()
	}

	if err := s.store.Stories.Insert(ctx, &story); err != nil {
		return nil, err
	}

	s.syncIndex(&story)
	if story.IsPublished() {
		s.adjustTagCounts(ctx, story.Tags, 1)
	}
	if s.logger != nil {
		s.logger.Info("story created", "id", story.ID, "slug", story.Slug, "status", story.Status)
	}
	view := NewStoryView(story, false, false)
	return &view, nil
}

// Update edits a story. Only the author may edit; retitling regenerates
// the slug and the same uniqueness rule applies as on create.
func (s *StoryService) Update(ctx context.Context, authorID, idOrSlug string, input UpdateStoryInput) (*StoryView, error) {
	story, err := s.find(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if story.AuthorID != authorID {
		return nil, apperrors.Forbidden("only the author can edit this story")
	}

	if input.Title != nil {
		newSlug := slug.Make(*input.Title)
		if newSlug == "" {
			return nil, apperrors.Validation("title produces an empty slug")
		}
		story.Title = strings.TrimSpace(*input.Title)
		story.Slug = newSlug
	}
	if input.Subtitle != nil {
		story.Subtitle = strings.TrimSpace(*input.Subtitle)
	}
	if input.Content != nil {
		body := *input.Content
		if input.Markdown {
			body, err = content.RenderMarkdown(body)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeValidation, "invalid markdown")
			}
		}
		story.Content = body
		story.Excerpt = content.Excerpt(body, excerptLength)
		story.ReadTimeMinutes = content.ReadTimeMinutes(body)
	}
	if input.CoverImage != nil {
		story.CoverImage = *input.CoverImage
	}
	prevTags := story.Tags
	if input.Tags != nil {
		if err := s.validateTags(ctx, *input.Tags); err != nil {
			return nil, err
		}
		story.Tags = *input.Tags
	}
	story.Touch()

	if err := s.store.Stories.Update(ctx, story); err != nil {
		return nil, err
	}

	s.syncIndex(story)
	if story.IsPublished() && input.Tags != nil {
		added, removed := diffTags(prevTags, story.Tags)
		s.adjustTagCounts(ctx, added, 1)
		s.adjustTagCounts(ctx, removed, -1)
	}
	view := NewStoryView(*story, false, false)
	return &view, nil
}

// Publish transitions a draft to published.
func (s *StoryService) Publish(ctx context.Context, authorID, idOrSlug string) (*StoryView, error) {
	story, err := s.find(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if story.AuthorID != authorID {
		return nil, apperrors.Forbidden("only the author can publish this story")
	}

	wasPublished := story.IsPublished()
	story.Publish()
	if err := s.store.Stories.Update(ctx, story); err != nil {
		return nil, err
	}

	s.syncIndex(story)
	if !wasPublished {
		s.adjustTagCounts(ctx, story.Tags, 1)
	}
	if s.logger != nil {
		s.logger.Info("story published", "id", story.ID, "slug", story.Slug)
	}
	view := NewStoryView(*story, false, false)
	return &view, nil
}

// Delete removes a story with its comments and bookmarks.
func (s *StoryService) Delete(ctx context.Context, authorID, idOrSlug string) error {
	story, err := s.find(ctx, idOrSlug)
	if err != nil {
		return err
	}
	if story.AuthorID != authorID {
		return apperrors.Forbidden("only the author can delete this story")
	}

	if err := s.store.Stories.Remove(ctx, story.ID); err != nil {
		return err
	}

	// Dependent records go best-effort; the story itself is gone.
	if err := s.store.Comments.Mutate(ctx, func(comments []domain.Comment) ([]domain.Comment, error) {
		kept := comments[:0]
		for i := range comments {
			if comments[i].StoryID != story.ID {
				kept = append(kept, comments[i])
			}
		}
		return kept, nil
	}); err != nil && s.logger != nil {
		s.logger.Warn("failed to remove story comments", "story_id", story.ID, "error", err)
	}

	if err := s.store.Bookmarks.Mutate(ctx, func(bookmarks []domain.Bookmark) ([]domain.Bookmark, error) {
		kept := bookmarks[:0]
		for i := range bookmarks {
			if bookmarks[i].StoryID != story.ID {
				kept = append(kept, bookmarks[i])
			}
		}
		return kept, nil
	}); err != nil && s.logger != nil {
		s.logger.Warn("failed to remove story bookmarks", "story_id", story.ID, "error", err)
	}

	if s.index != nil {
		if err := s.index.Delete(story.ID); err != nil && s.logger != nil {
			s.logger.Warn("failed to deindex story", "story_id", story.ID, "error", err)
		}
	}
	if story.IsPublished() {
		s.adjustTagCounts(ctx, story.Tags, -1)
	}

	if s.logger != nil {
		s.logger.Info("story deleted", "id", story.ID, "slug", story.Slug)
	}
	return nil
}

// RecordView bumps a story's view counter and logs the event.
func (s *StoryService) RecordView(ctx context.Context, viewerID, idOrSlug string) error {
	story, err := s.find(ctx, idOrSlug)
	if err != nil {
		return err
	}

	err = s.store.Stories.Mutate(ctx, func(stories []domain.Story) ([]domain.Story, error) {
		for i := range stories {
			if stories[i].ID == story.ID {
				stories[i].Views++
			}
		}
		return stories, nil
	})
	if err != nil {
		return err
	}

	if s.analytics != nil {
		if err := s.analytics.Record(ctx, analytics.EventView, story.ID, viewerID); err != nil && s.logger != nil {
			s.logger.Warn("failed to record view event", "story_id", story.ID, "error", err)
		}
	}
	return nil
}

// ToggleLike flips the viewer's like optimistically. The returned
// engagement reflects the flip immediately; the settled channel reports
// whether the durable write committed or was reverted.
func (s *StoryService) ToggleLike(ctx context.Context, viewerID, idOrSlug string) (Engagement, <-chan optimistic.Settled[Engagement], error) {
	if viewerID == "" {
		return Engagement{}, nil, apperrors.Validation("a user is required to like a story")
	}
	story, err := s.find(ctx, idOrSlug)
	if err != nil {
		return Engagement{}, nil, err
	}

	prev := Engagement{Likes: story.Likes, IsLiked: story.LikedByUser(viewerID)}
	next := Engagement{IsLiked: !prev.IsLiked}
	if next.IsLiked {
		next.Likes = prev.Likes + 1
	} else {
		next.Likes = max(0, prev.Likes-1)
	}

	storyID := story.ID
	persist := func(ctx context.Context, state Engagement) error {
		if err := s.writeLike(ctx, storyID, viewerID, state.IsLiked); err != nil {
			return err
		}
		// A reverted like never reaches the dashboard, so the event is
		// recorded only after the write lands.
		if state.IsLiked && s.analytics != nil {
			if aerr := s.analytics.Record(ctx, analytics.EventLike, storyID, viewerID); aerr != nil && s.logger != nil {
				s.logger.Warn("failed to record like event", "story_id", storyID, "error", aerr)
			}
		}
		return nil
	}
	revert := func(ctx context.Context, state Engagement) error {
		return s.writeLike(ctx, storyID, viewerID, state.IsLiked)
	}

	return s.likes.Apply(ctx, storyID+"/"+viewerID, prev, next, persist, revert)
}

// writeLike applies the like membership durably.
func (s *StoryService) writeLike(ctx context.Context, storyID, viewerID string, liked bool) error {
	return s.store.Stories.Mutate(ctx, func(stories []domain.Story) ([]domain.Story, error) {
		for i := range stories {
			if stories[i].ID != storyID {
				continue
			}
			if liked {
				stories[i].AddLike(viewerID)
			} else {
				stories[i].RemoveLike(viewerID)
			}
		}
		return stories, nil
	})
}

// Reindex pushes every published story into the search index. Called on
// startup to catch writes that happened while the index was stale.
func (s *StoryService) Reindex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	stories, err := s.store.Stories.Find(ctx, func(st *domain.Story) bool { return st.IsPublished() })
	if err != nil {
		return err
	}
	docs := make([]*search.StoryDocument, len(stories))
	for i := range stories {
		docs[i] = search.FromStory(&stories[i])
	}
	if err := s.index.IndexBatch(docs); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("search index refreshed", "stories", len(docs))
	}
	return nil
}

// find resolves a story by ID or slug.
func (s *StoryService) find(ctx context.Context, idOrSlug string) (*domain.Story, error) {
	stories, err := s.store.Stories.Find(ctx, func(st *domain.Story) bool {
		return st.ID == idOrSlug || st.Slug == idOrSlug
	})
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return nil, apperrors.NotFoundf("story %q not found", idOrSlug)
	}
	return &stories[0], nil
}

// validateTags confirms every slug exists in the catalog.
func (s *StoryService) validateTags(ctx context.Context, tagSlugs []string) error {
	if len(tagSlugs) == 0 {
		return nil
	}
	tags, err := s.store.Tags.All(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(tags))
	for i := range tags {
		known[tags[i].Slug] = true
	}
	for _, t := range tagSlugs {
		if !known[t] {
			return apperrors.Validationf("unknown tag %q", t)
		}
	}
	return nil
}

// diffTags splits a tag-set change into additions and removals.
func diffTags(prev, next []string) (added, removed []string) {
	before := make(map[string]bool, len(prev))
	for _, t := range prev {
		before[t] = true
	}
	after := make(map[string]bool, len(next))
	for _, t := range next {
		after[t] = true
	}
	for _, t := range next {
		if !before[t] {
			added = append(added, t)
		}
	}
	for _, t := range prev {
		if !after[t] {
			removed = append(removed, t)
		}
	}
	return added, removed
}

// project decorates stories with viewer-specific flags.
func (s *StoryService) project(ctx context.Context, viewerID string, stories []domain.Story) ([]StoryView, error) {
	bookmarked := make(map[string]bool)
	if viewerID != "" {
		marks, err := s.store.Bookmarks.Find(ctx, func(b *domain.Bookmark) bool { return b.UserID == viewerID })
		if err != nil {
			return nil, err
		}
		for i := range marks {
			bookmarked[marks[i].StoryID] = true
		}
	}

	views := make([]StoryView, len(stories))
	for i := range stories {
		views[i] = NewStoryView(
			stories[i],
			viewerID != "" && stories[i].LikedByUser(viewerID),
			bookmarked[stories[i].ID],
		)
	}
	return views, nil
}

// syncIndex mirrors a story write into the search index. Failures are
// logged, not surfaced.
func (s *StoryService) syncIndex(story *domain.Story) {
	if s.index == nil {
		return
	}
	var err error
	if story.IsPublished() {
		err = s.index.Index(search.FromStory(story))
	} else {
		err = s.index.Delete(story.ID)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("failed to sync search index", "story_id", story.ID, "error", err)
	}
}

// adjustTagCounts shifts the catalog counters for a published story's
// tags. Failures are logged; the counters tolerate drift.
func (s *StoryService) adjustTagCounts(ctx context.Context, slugs []string, delta int) {
	if s.tags == nil {
		return
	}
	if err := s.tags.AdjustStoryCounts(ctx, slugs, delta); err != nil && s.logger != nil {
		s.logger.Warn("failed to adjust tag counts", "error", err)
	}
}
