package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for story documents.
//
// Priorities:
//  1. Full-text search on title and body with English stemming
//  2. Author matches rank below title matches
//  3. Exact keyword matching on tag slugs for filtering
//  4. Numeric fields for recency and popularity sorting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Title - primary search target, highlighted in results
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Subtitle - searched alongside the title, highlighted
	subtitleFieldMapping := bleve.NewTextFieldMapping()
	subtitleFieldMapping.Analyzer = en.AnalyzerName
	subtitleFieldMapping.Store = true
	subtitleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("subtitle", subtitleFieldMapping)

	// Excerpt - stored for result display, highlighted
	excerptFieldMapping := bleve.NewTextFieldMapping()
	excerptFieldMapping.Analyzer = en.AnalyzerName
	excerptFieldMapping.Store = true
	excerptFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("excerpt", excerptFieldMapping)

	// Body - searchable but not stored, it can be large
	bodyFieldMapping := bleve.NewTextFieldMapping()
	bodyFieldMapping.Analyzer = en.AnalyzerName
	bodyFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("body", bodyFieldMapping)

	// Author name - searchable, highlighted
	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = en.AnalyzerName
	authorFieldMapping.Store = true
	authorFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("author_name", authorFieldMapping)

	// Author ID - exact filter only
	authorIDFieldMapping := bleve.NewTextFieldMapping()
	authorIDFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("author_id", authorIDFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Tags - keyword analyzer keeps compound slugs intact
	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	tagsFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	// Numeric fields for sorting
	likesFieldMapping := bleve.NewNumericFieldMapping()
	likesFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("likes", likesFieldMapping)

	viewsFieldMapping := bleve.NewNumericFieldMapping()
	viewsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("views", viewsFieldMapping)

	publishedAtFieldMapping := bleve.NewNumericFieldMapping()
	publishedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("published_at", publishedAtFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
