// Package search provides full-text story search using Bleve, with
// fuzzy matching, tag filtering, and match highlighting.
package search

import (
	"github.com/storysphere/storysphere-server/internal/content"
	"github.com/storysphere/storysphere-server/internal/domain"
)

// StoryDocument is the document shape stored in the Bleve index.
// Body text is indexed as plain text so markup never matches queries.
type StoryDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	Body        string   `json:"body,omitempty"`
	AuthorName  string   `json:"author_name,omitempty"`
	AuthorID    string   `json:"author_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Likes       int      `json:"likes"`
	Views       int      `json:"views"`
	PublishedAt int64    `json:"published_at"` // Unix millis
	CreatedAt   int64    `json:"created_at"`   // Unix millis
}

// ToMap converts the document to a map with lowercase field names so
// they match the index mapping.
func (d *StoryDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"likes":      d.Likes,
		"views":      d.Views,
		"created_at": d.CreatedAt,
	}

	if d.Subtitle != "" {
		m["subtitle"] = d.Subtitle
	}
	if d.Excerpt != "" {
		m["excerpt"] = d.Excerpt
	}
	if d.Body != "" {
		m["body"] = d.Body
	}
	if d.AuthorName != "" {
		m["author_name"] = d.AuthorName
	}
	if d.AuthorID != "" {
		m["author_id"] = d.AuthorID
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.PublishedAt > 0 {
		m["published_at"] = d.PublishedAt
	}

	return m
}

// FromStory converts a published story to its search document.
func FromStory(s *domain.Story) *StoryDocument {
	doc := &StoryDocument{
		ID:         s.ID,
		Title:      s.Title,
		Subtitle:   s.Subtitle,
		Excerpt:    s.Excerpt,
		Body:       content.PlainText(s.Content),
		AuthorName: s.AuthorName,
		AuthorID:   s.AuthorID,
		Tags:       s.Tags,
		Likes:      s.Likes,
		Views:      s.Views,
		CreatedAt:  s.CreatedAt.UnixMilli(),
	}
	if s.PublishedAt != nil {
		doc.PublishedAt = s.PublishedAt.UnixMilli()
	}
	return doc
}
