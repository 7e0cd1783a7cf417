package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/storysphere/storysphere-server/internal/domain"
	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/id"
	"github.com/storysphere/storysphere-server/internal/slug"
	"github.com/storysphere/storysphere-server/internal/store"
)

// TagService orchestrates the tag catalog. Tags are community-wide and
// never deleted; story counters move only via explicit adjustments.
type TagService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(st *store.Store, logger *slog.Logger) *TagService {
	return &TagService{store: st, logger: logger}
}

// CreateTagInput is the payload for creating a tag.
type CreateTagInput struct {
	Name        string `json:"name" validate:"required,min=2,max=40"`
	Description string `json:"description" validate:"max=200"`
	Featured    bool   `json:"featured"`
}

// List returns all tags ordered by story count, then name.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.store.Tags.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].StoryCount != tags[j].StoryCount {
			return tags[i].StoryCount > tags[j].StoryCount
		}
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

// Featured returns the featured subset in catalog order.
func (s *TagService) Featured(ctx context.Context) ([]domain.Tag, error) {
	return s.store.Tags.Find(ctx, func(t *domain.Tag) bool { return t.Featured })
}

// Popular returns the most used tags, capped at limit.
func (s *TagService) Popular(ctx context.Context, limit int) ([]domain.Tag, error) {
	tags, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// Search filters the catalog by a case-insensitive substring match on
// name and description, with usage ordering and pagination. An empty
// query matches every tag.
func (s *TagService) Search(ctx context.Context, query string, limit, offset int) ([]domain.Tag, error) {
	tags, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		matched := tags[:0]
		for i := range tags {
			if strings.Contains(strings.ToLower(tags[i].Name), q) ||
				strings.Contains(strings.ToLower(tags[i].Description), q) {
				matched = append(matched, tags[i])
			}
		}
		tags = matched
	}

	if offset > 0 {
		if offset >= len(tags) {
			return nil, nil
		}
		tags = tags[offset:]
	}
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}

// GetBySlug returns a tag by its slug.
func (s *TagService) GetBySlug(ctx context.Context, tagSlug string) (*domain.Tag, error) {
	return s.store.Tags.GetByKey(ctx, "slug", strings.ToLower(strings.TrimSpace(tagSlug)))
}

// Create adds a tag to the catalog. The slug is derived from the name;
// a name that normalizes to an existing slug is rejected.
func (s *TagService) Create(ctx context.Context, input CreateTagInput) (*domain.Tag, error) {
	tagSlug := slug.Make(input.Name)
	if tagSlug == "" {
		return nil, apperrors.Validation("tag name produces an empty slug")
	}

	tag := domain.Tag{
		Name:        strings.TrimSpace(input.Name),
		Slug:        tagSlug,
		Description: strings.TrimSpace(input.Description),
		Color:       tagSlug,
		Featured:    input.Featured,
	}
	tag.ID = id.MustGenerate("tag")
	tag.InitTimestamps()

	if err := s.store.Tags.Insert(ctx, &tag); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("tag created", "slug", tag.Slug, "id", tag.ID)
	}
	return &tag, nil
}

// AdjustStoryCounts shifts the denormalized story counters for the
// given slugs by delta, flooring at zero. Counters move only through
// these explicit calls; a missed call leaves them drifted rather than
// triggering a rescan.
func (s *TagService) AdjustStoryCounts(ctx context.Context, slugs []string, delta int) error {
	if len(slugs) == 0 || delta == 0 {
		return nil
	}
	want := make(map[string]bool, len(slugs))
	for _, sl := range slugs {
		want[sl] = true
	}
	return s.store.Tags.Mutate(ctx, func(tags []domain.Tag) ([]domain.Tag, error) {
		for i := range tags {
			if want[tags[i].Slug] {
				tags[i].StoryCount = max(0, tags[i].StoryCount+delta)
			}
		}
		return tags, nil
	})
}

// IncrementStoryCount bumps one tag's story counter.
func (s *TagService) IncrementStoryCount(ctx context.Context, tagSlug string) error {
	return s.AdjustStoryCounts(ctx, []string{tagSlug}, 1)
}

// DecrementStoryCount lowers one tag's story counter, flooring at zero.
func (s *TagService) DecrementStoryCount(ctx context.Context, tagSlug string) error {
	return s.AdjustStoryCounts(ctx, []string{tagSlug}, -1)
}
