package domain

import (
	"slices"
	"time"
)

// StoryStatus is the publication state of a story.
type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "draft"
	StoryStatusPublished StoryStatus = "published"
)

// IsValid reports whether the status is one of the known states.
func (s StoryStatus) IsValid() bool {
	return s == StoryStatusDraft || s == StoryStatusPublished
}

// Story represents a piece of long-form content on the platform.
// Content is an opaque rich-text blob; Excerpt and ReadTimeMinutes are
// derived from it when the story is written.
type Story struct {
	Record
	PublishedAt     *time.Time  `json:"publishedAt,omitempty"`
	Title           string      `json:"title"`
	Subtitle        string      `json:"subtitle,omitempty"`
	Slug            string      `json:"slug"`
	Content         string      `json:"content"`
	Excerpt         string      `json:"excerpt,omitempty"`
	CoverImage      string      `json:"coverImage,omitempty"`
	AuthorID        string      `json:"authorId"`
	AuthorName      string      `json:"authorName"`
	Status          StoryStatus `json:"status"`
	Tags            []string    `json:"tags,omitempty"` // tag slugs
	LikedBy         []string    `json:"likedBy,omitempty"`
	Likes           int         `json:"likes"`
	Views           int         `json:"views"`
	CommentCount    int         `json:"commentCount"`
	ReadTimeMinutes int         `json:"readTimeMinutes"`
}

// IsPublished reports whether the story is visible to readers.
func (s *Story) IsPublished() bool {
	return s.Status == StoryStatusPublished
}

// LikedByUser reports whether the given user has liked the story.
func (s *Story) LikedByUser(userID string) bool {
	return slices.Contains(s.LikedBy, userID)
}

// AddLike records a like from the given user. Returns false if the user
// already liked the story.
func (s *Story) AddLike(userID string) bool {
	if s.LikedByUser(userID) {
		return false
	}
	s.LikedBy = append(s.LikedBy, userID)
	s.Likes = len(s.LikedBy)
	return true
}

// RemoveLike removes the given user's like. Returns false if the user
// had not liked the story.
func (s *Story) RemoveLike(userID string) bool {
	i := slices.Index(s.LikedBy, userID)
	if i < 0 {
		return false
	}
	s.LikedBy = slices.Delete(s.LikedBy, i, i+1)
	s.Likes = len(s.LikedBy)
	return true
}

// HasTag reports whether the story carries the given tag slug.
func (s *Story) HasTag(tagSlug string) bool {
	return slices.Contains(s.Tags, tagSlug)
}

// Publish transitions the story to published and stamps PublishedAt.
// Publishing an already published story is a no-op.
func (s *Story) Publish() {
	if s.IsPublished() {
		return
	}
	now := time.Now()
	s.Status = StoryStatusPublished
	s.PublishedAt = &now
	s.UpdatedAt = now
}
