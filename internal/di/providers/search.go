package providers

import (
	"github.com/samber/do/v2"

	"github.com/storysphere/storysphere-server/internal/config"
	"github.com/storysphere/storysphere-server/internal/logger"
	"github.com/storysphere/storysphere-server/internal/search"
)

// SearchIndexHandle wraps the story index with shutdown capability.
type SearchIndexHandle struct {
	*search.StoryIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the full-text story index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewStoryIndex(cfg.SearchIndexPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Search index opened", "path", cfg.SearchIndexPath())
	return &SearchIndexHandle{StoryIndex: index}, nil
}
