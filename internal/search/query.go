package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a story search.
type Params struct {
	Query string // User's search query

	// Filters
	Tags     []string // Exact tag slugs, OR across values
	AuthorID string   // Restrict to one author

	// Pagination
	Limit  int
	Offset int

	// Sorting: "relevance", "recent", "popular"
	SortBy string

	Highlight bool
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:     20,
		SortBy:    "relevance",
		Highlight: true,
	}
}

// Result is one search response page.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"tookMs"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matched story.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle,omitempty"`
	Excerpt    string            `json:"excerpt,omitempty"`
	AuthorName string            `json:"authorName,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Likes      int               `json:"likes"`
	Views      int               `json:"views"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a query against the story index.
func (s *StoryIndex) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchQuery := buildQuery(params)
	req := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	addSorting(req, params.SortBy)

	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("subtitle")
		req.Highlight.AddField("excerpt")
		req.Highlight.AddField("author_name")
	}

	req.Fields = []string{"id", "title", "subtitle", "excerpt", "author_name", "tags", "likes", "views"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := Hit{ID: hit.ID, Score: hit.Score}

		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if st, ok := hit.Fields["subtitle"].(string); ok {
			h.Subtitle = st
		}
		if e, ok := hit.Fields["excerpt"].(string); ok {
			h.Excerpt = e
		}
		if a, ok := hit.Fields["author_name"].(string); ok {
			h.AuthorName = a
		}
		if l, ok := hit.Fields["likes"].(float64); ok {
			h.Likes = int(l)
		}
		if v, ok := hit.Fields["views"].(float64); ok {
			h.Views = int(v)
		}
		switch tags := hit.Fields["tags"].(type) {
		case string:
			h.Tags = []string{tags}
		case []interface{}:
			for _, t := range tags {
				if ts, ok := t.(string); ok {
					h.Tags = append(h.Tags, ts)
				}
			}
		}

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildQuery constructs the Bleve query from params.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Title match with highest boost
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		// Subtitle ranks just under the title
		subtitleMatch := bleve.NewMatchQuery(params.Query)
		subtitleMatch.SetField("subtitle")
		subtitleMatch.SetBoost(2.5)
		textQueries = append(textQueries, subtitleMatch)

		// Body and excerpt matches
		bodyMatch := bleve.NewMatchQuery(params.Query)
		bodyMatch.SetField("body")
		textQueries = append(textQueries, bodyMatch)

		excerptMatch := bleve.NewMatchQuery(params.Query)
		excerptMatch.SetField("excerpt")
		excerptMatch.SetBoost(1.5)
		textQueries = append(textQueries, excerptMatch)

		// Author match ranks between body and title
		authorMatch := bleve.NewMatchQuery(params.Query)
		authorMatch.SetField("author_name")
		authorMatch.SetBoost(2.0)
		textQueries = append(textQueries, authorMatch)

		// Fuzzy title match for typo tolerance
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for search-as-you-type (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Tag filter (exact match, OR across slugs)
	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, slug := range params.Tags {
			tq := bleve.NewTermQuery(slug)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	// Author filter
	if params.AuthorID != "" {
		aq := bleve.NewTermQuery(params.AuthorID)
		aq.SetField("author_id")
		queries = append(queries, aq)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, sortBy string) {
	switch sortBy {
	case "recent":
		req.SortBy([]string{"-published_at", "-created_at"})
	case "popular":
		req.SortBy([]string{"-likes", "-views"})
	default:
		req.SortBy([]string{"-_score"})
	}
}
