package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/storysphere/storysphere-server/internal/config"
	"github.com/storysphere/storysphere-server/internal/fixtures"
	"github.com/storysphere/storysphere-server/internal/logger"
	"github.com/storysphere/storysphere-server/internal/service"
)

// DraftFlusherHandle runs the autosave loop for staged drafts.
type DraftFlusherHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *DraftFlusherHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideDraftFlusher starts the draft autosave loop.
func ProvideDraftFlusher(i do.Injector) (*DraftFlusherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	drafts := do.MustInvoke[*service.DraftService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		drafts.Run(ctx)
	}()

	log.Info("Draft autosave loop started", "interval", cfg.Autosave.Interval)
	return &DraftFlusherHandle{cancel: cancel, done: done}, nil
}

// FixtureWatcherHandle wraps the user fixtures watcher.
type FixtureWatcherHandle struct {
	watcher *fixtures.Watcher
	cancel  context.CancelFunc
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *FixtureWatcherHandle) Shutdown() error {
	if !h.started {
		return nil
	}
	h.cancel()
	return h.watcher.Close()
}

// ProvideFixtureWatcher starts hot reload of the user fixtures file.
// Disabled when no fixtures path is configured.
func ProvideFixtureWatcher(i do.Injector) (*FixtureWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Data.FixturesPath == "" {
		log.Info("User fixtures watcher disabled, no fixtures path configured")
		return &FixtureWatcherHandle{started: false}, nil
	}

	watcher := fixtures.NewWatcher(cfg.Data.FixturesPath, storeHandle.Store, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	if err := watcher.Start(ctx); err != nil {
		cancel()
		log.Warn("User fixtures watcher unavailable", "error", err)
		return &FixtureWatcherHandle{started: false}, nil
	}

	log.Info("Watching user fixtures", "path", cfg.Data.FixturesPath)
	return &FixtureWatcherHandle{watcher: watcher, cancel: cancel, started: true}, nil
}
