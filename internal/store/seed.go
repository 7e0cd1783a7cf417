package store

import (
	"context"

	"github.com/storysphere/storysphere-server/internal/domain"
	"github.com/storysphere/storysphere-server/internal/id"
)

// defaultTag describes one entry of the built-in tag catalog.
type defaultTag struct {
	name        string
	slug        string
	description string
	featured    bool
}

// defaultTags is the tag catalog every fresh install starts with.
// Color keys match the slug so the frontend theme can map them directly.
var defaultTags = []defaultTag{
	{"Technology", "technology", "Latest in tech, software, and innovation", true},
	{"Design", "design", "UI/UX, graphic design, and creative arts", true},
	{"Business", "business", "Entrepreneurship, startups, and business insights", true},
	{"Science", "science", "Scientific discoveries and research", false},
	{"Health", "health", "Wellness, fitness, and healthcare", false},
	{"Travel", "travel", "Adventures, destinations, and travel tips", false},
	{"Food", "food", "Recipes, restaurants, and culinary experiences", false},
	{"Lifestyle", "lifestyle", "Life tips, personal development, and culture", false},
	{"Politics", "politics", "Political analysis and current affairs", false},
	{"Entertainment", "entertainment", "Movies, music, TV, and pop culture", false},
}

// EnsureDefaultTags populates the tag collection on first run. An
// already-seeded store is left untouched so user edits survive restarts.
func (s *Store) EnsureDefaultTags(ctx context.Context) error {
	count, err := s.Tags.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tags := make([]domain.Tag, 0, len(defaultTags))
	for _, dt := range defaultTags {
		tag := domain.Tag{
			Name:        dt.name,
			Slug:        dt.slug,
			Description: dt.description,
			Color:       dt.slug,
			Featured:    dt.featured,
		}
		tag.ID = id.MustGenerate("tag")
		tag.InitTimestamps()
		tags = append(tags, tag)
	}

	if err := s.Tags.Replace(ctx, tags); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Info("seeded default tag catalog", "count", len(tags))
	}
	return nil
}
