package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/storysphere/storysphere-server/internal/analytics"
	"github.com/storysphere/storysphere-server/internal/config"
	"github.com/storysphere/storysphere-server/internal/fixtures"
	"github.com/storysphere/storysphere-server/internal/kv"
	"github.com/storysphere/storysphere-server/internal/latency"
	"github.com/storysphere/storysphere-server/internal/logger"
	"github.com/storysphere/storysphere-server/internal/store"
)

// StoreHandle wraps the entity store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the entity store over the badger adapter,
// seeded with the default tag catalog and the user fixtures.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	adapter, err := kv.OpenBadger(cfg.StorePath(), log.Logger)
	if err != nil {
		return nil, err
	}

	gate := latency.NewGate(cfg.Latency.Delay)
	st := store.New(adapter, gate, log.Logger)

	ctx := context.Background()
	if err := st.EnsureDefaultTags(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	if err := fixtures.EnsureUsers(ctx, st, cfg.Data.FixturesPath); err != nil {
		_ = st.Close()
		return nil, err
	}

	log.Info("Entity store initialized",
		"path", cfg.StorePath(),
		"latency", gate.Delay(),
	)

	return &StoreHandle{Store: st}, nil
}

// AnalyticsHandle wraps the analytics event log with shutdown capability.
type AnalyticsHandle struct {
	*analytics.Analytics
}

// Shutdown implements do.Shutdownable.
func (h *AnalyticsHandle) Shutdown() error {
	return h.Close()
}

// ProvideAnalytics provides the analytics event log.
func ProvideAnalytics(i do.Injector) (*AnalyticsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	an, err := analytics.Open(cfg.AnalyticsPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Analytics database initialized", "path", cfg.AnalyticsPath())
	return &AnalyticsHandle{Analytics: an}, nil
}
