// Package main provides a tool to seed the store with demo content.
//
// It ensures the default tags and fixture users exist, then writes a
// handful of published stories with likes, comments, and bookmarks so
// the feed, search, and dashboard have something to show.
//
// Usage:
//
//	DATA_PATH=~/StorySphere/data go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/storysphere/storysphere-server/internal/analytics"
	"github.com/storysphere/storysphere-server/internal/domain"
	"github.com/storysphere/storysphere-server/internal/fixtures"
	"github.com/storysphere/storysphere-server/internal/kv"
	"github.com/storysphere/storysphere-server/internal/latency"
	"github.com/storysphere/storysphere-server/internal/search"
	"github.com/storysphere/storysphere-server/internal/service"
	"github.com/storysphere/storysphere-server/internal/store"
)

type sampleStory struct {
	title    string
	subtitle string
	content  string
	tags     []string
}

var samples = []sampleStory{
	{
		title:    "The Slow Web Is Worth Waiting For",
		subtitle: "In praise of pages that load like letters arrive",
		content:  "<p>Not every page needs to load in a hundred milliseconds. Some of the best writing online lives on servers that take their time, and readers who care will wait.</p><p>This piece looks at small communities that traded speed for depth.</p>",
		tags:     []string{"technology", "lifestyle"},
	},
	{
		title:    "Designing Dashboards People Actually Read",
		subtitle: "One question per view, one number per question",
		content:  "<p>Most dashboards are built to impress in a demo and ignored in production. The fix is ruthless reduction: one question per view, one number per question.</p>",
		tags:     []string{"design", "business"},
	},
	{
		title:    "A Field Guide to Fermentation",
		content:  "<p>Sourdough is the gateway. After that come kimchi, miso, and the quiet discipline of waiting for microbes to do their work.</p>",
		tags:     []string{"food"},
	},
	{
		title:    "What Marathon Training Taught Me About Estimates",
		content:  "<p>Every training plan survives contact with week three. Software schedules fail the same way, and for the same reason: we plan for the best version of ourselves.</p>",
		tags:     []string{"health", "business"},
	},
	{
		title:    "Night Trains Across Europe, Reviewed",
		content:  "<p>Twelve routes, four countries, one unshakable conviction that the couchette is civilization's finest compromise.</p>",
		tags:     []string{"travel"},
	},
}

var comments = []string{
	"This put words to something I've felt for years.",
	"Bookmarking this for the weekend. Great work.",
	"Respectfully disagree with the middle section, but the ending lands.",
	"More of this, please.",
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/StorySphere/data")
	}

	fmt.Printf("Seeding data at: %s\n", dataPath)

	adapter, err := kv.OpenBadger(filepath.Join(dataPath, "store"), nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	st := store.New(adapter, latency.NewGate(0), nil)
	defer st.Close()

	index, err := search.NewStoryIndex(filepath.Join(dataPath, "search.bleve"), nil)
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	an, err := analytics.Open(filepath.Join(dataPath, "analytics.db"), nil)
	if err != nil {
		log.Fatalf("Failed to open analytics: %v", err)
	}
	defer an.Close()

	ctx := context.Background()

	if err := st.EnsureDefaultTags(ctx); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}
	if err := fixtures.EnsureUsers(ctx, st, ""); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	users, err := st.Users.All(ctx)
	if err != nil {
		log.Fatalf("Failed to list users: %v", err)
	}
	if len(users) == 0 {
		log.Fatal("No users available to author stories")
	}

	tagService := service.NewTagService(st, nil)
	storyService := service.NewStoryService(st, index, an, tagService, nil)
	commentService := service.NewCommentService(st, an, nil)
	bookmarkService := service.NewBookmarkService(st, an, nil)

	seeded := 0
	for i, sample := range samples {
		author := users[i%len(users)]

		view, err := storyService.Create(ctx, author.ID, service.CreateStoryInput{
			Title:    sample.title,
			Subtitle: sample.subtitle,
			Content:  sample.content,
			Tags:     sample.tags,
			Publish:  true,
		})
		if err != nil {
			// Re-running the seeder hits slug collisions; skip quietly.
			fmt.Printf("  skipped %q: %v\n", sample.title, err)
			continue
		}
		seeded++

		engage(ctx, st, an, commentService, bookmarkService, storyService, users, view.Story)
		fmt.Printf("  published %q by %s\n", view.Title, view.AuthorName)
	}

	fmt.Printf("Done. %d stories seeded.\n", seeded)
}

// engage sprinkles likes, views, comments, and bookmarks from the rest
// of the roster onto a story.
func engage(
	ctx context.Context,
	st *store.Store,
	an *analytics.Analytics,
	commentService *service.CommentService,
	bookmarkService *service.BookmarkService,
	storyService *service.StoryService,
	users []domain.User,
	story domain.Story,
) {
	for _, user := range users {
		if user.ID == story.AuthorID {
			continue
		}

		views := 1 + rand.Intn(5)
		for range views {
			_ = storyService.RecordView(ctx, user.ID, story.ID)
		}

		if rand.Intn(2) == 0 {
			_ = st.Stories.Mutate(ctx, func(stories []domain.Story) ([]domain.Story, error) {
				for i := range stories {
					if stories[i].ID == story.ID {
						stories[i].AddLike(user.ID)
					}
				}
				return stories, nil
			})
			_ = an.Record(ctx, analytics.EventLike, story.ID, user.ID)
		}

		if rand.Intn(3) == 0 {
			_, _ = commentService.Create(ctx, user.ID, story.ID, service.CreateCommentInput{
				Content: comments[rand.Intn(len(comments))],
			})
		}

		if rand.Intn(4) == 0 {
			_, _ = bookmarkService.Add(ctx, user.ID, story.ID)
		}
	}
}
