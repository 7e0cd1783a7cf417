package providers

import (
	"github.com/samber/do/v2"

	"github.com/storysphere/storysphere-server/internal/config"
	"github.com/storysphere/storysphere-server/internal/logger"
	"github.com/storysphere/storysphere-server/internal/service"
)

// ProvideTagService provides the tag catalog service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideStoryService provides the story lifecycle service.
func ProvideStoryService(i do.Injector) (*service.StoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	analyticsHandle := do.MustInvoke[*AnalyticsHandle](i)
	tagService := do.MustInvoke[*service.TagService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStoryService(
		storeHandle.Store,
		searchHandle.StoryIndex,
		analyticsHandle.Analytics,
		tagService,
		log.Logger,
	), nil
}

// ProvideUserService provides the profile and follow graph service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	analyticsHandle := do.MustInvoke[*AnalyticsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewUserService(storeHandle.Store, analyticsHandle.Analytics, log.Logger), nil
}

// ProvideBookmarkService provides the reading list service.
func ProvideBookmarkService(i do.Injector) (*service.BookmarkService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	analyticsHandle := do.MustInvoke[*AnalyticsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewBookmarkService(storeHandle.Store, analyticsHandle.Analytics, log.Logger), nil
}

// ProvideCommentService provides the discussion thread service.
func ProvideCommentService(i do.Injector) (*service.CommentService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	analyticsHandle := do.MustInvoke[*AnalyticsHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewCommentService(storeHandle.Store, analyticsHandle.Analytics, log.Logger), nil
}

// ProvideDraftService provides the autosaving draft service.
func ProvideDraftService(i do.Injector) (*service.DraftService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewDraftService(storeHandle.Store, cfg.Autosave.Interval, log.Logger), nil
}
