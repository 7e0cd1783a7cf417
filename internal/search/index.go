package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// StoryIndex wraps a Bleve index over published stories.
//
// Thread safety: all public methods are safe for concurrent use. The
// mutex guards against corruption during rebuilds.
type StoryIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch triggers an automatic rebuild on startup.
const mappingVersion = "1"

// NewStoryIndex creates or opens the index at path. A corrupt or
// outdated index is removed and recreated; callers should reindex
// after startup when DocumentCount is zero.
func NewStoryIndex(path string, logger *slog.Logger) (*StoryIndex, error) {
	versionPath := path + ".version"

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(path); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(existingVersion) != mappingVersion {
			if logger != nil {
				logger.Info("search index mapping outdated, will rebuild",
					"new_version", mappingVersion)
			}
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(path)
		if err != nil {
			if logger != nil {
				logger.Warn("failed to open existing index, will recreate",
					"path", path, "error", err)
			}
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(path); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
		index, err = bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil && logger != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		if logger != nil {
			logger.Info("created new search index", "path", path, "mapping_version", mappingVersion)
		}
	} else if logger != nil {
		logger.Info("opened existing search index", "path", path)
	}

	return &StoryIndex{
		index:  index,
		path:   path,
		logger: logger,
	}, nil
}

// NewMemoryStoryIndex creates an in-memory index for tests.
func NewMemoryStoryIndex() (*StoryIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &StoryIndex{index: index}, nil
}

// Close closes the index and releases resources.
func (s *StoryIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Index adds or updates one story document.
func (s *StoryIndex) Index(doc *StoryDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Map form keeps field names aligned with the lowercase mapping.
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexBatch indexes multiple documents at once. Used for startup
// reindexing.
func (s *StoryIndex) IndexBatch(docs []*StoryDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	return s.index.Batch(batch)
}

// Delete removes a story from the index. Deleting an unindexed story
// is harmless.
func (s *StoryIndex) Delete(storyID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(storyID)
}

// DocumentCount returns the total number of indexed stories.
func (s *StoryIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
