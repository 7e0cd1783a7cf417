package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/storysphere/storysphere-server/internal/store"
)

// DraftService stages work-in-progress edits in memory and flushes them
// on an autosave interval. Typing stays cheap; the durable write happens
// at most once per tick per author.
type DraftService struct {
	store    *store.Store
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	staged map[string]*store.Draft
}

// NewDraftService creates a new draft service. A non-positive interval
// disables the autosave loop; Save still flushes immediately.
func NewDraftService(st *store.Store, interval time.Duration, logger *slog.Logger) *DraftService {
	return &DraftService{
		store:    st,
		interval: interval,
		logger:   logger,
		staged:   make(map[string]*store.Draft),
	}
}

// Stage holds an author's latest edit in memory until the next autosave
// tick. Subsequent stages replace the previous one.
func (s *DraftService) Stage(authorID string, draft store.Draft) {
	s.mu.Lock()
	s.staged[authorID] = &draft
	s.mu.Unlock()
}

// Save persists an author's draft immediately, bypassing the autosave
// interval, and drops any staged copy.
func (s *DraftService) Save(ctx context.Context, authorID string, draft store.Draft) (*store.Draft, error) {
	s.mu.Lock()
	delete(s.staged, authorID)
	s.mu.Unlock()

	if err := s.store.Drafts.Save(ctx, authorID, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// Get returns the author's persisted draft. A staged edit that has not
// flushed yet wins over the persisted copy.
func (s *DraftService) Get(ctx context.Context, authorID string) (*store.Draft, error) {
	s.mu.Lock()
	staged, ok := s.staged[authorID]
	s.mu.Unlock()
	if ok {
		d := *staged
		return &d, nil
	}
	return s.store.Drafts.Get(ctx, authorID)
}

// Discard drops the author's draft, staged and persisted.
func (s *DraftService) Discard(ctx context.Context, authorID string) error {
	s.mu.Lock()
	delete(s.staged, authorID)
	s.mu.Unlock()
	return s.store.Drafts.Discard(ctx, authorID)
}

// Run flushes staged drafts every interval until ctx is done. A final
// flush runs on shutdown so nothing typed is lost.
func (s *DraftService) Run(ctx context.Context) {
	if s.interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush(ctx)
		case <-ctx.Done():
			s.Flush(context.WithoutCancel(ctx))
			return
		}
	}
}

// Flush persists every staged draft. Failed writes stay staged for the
// next tick.
func (s *DraftService) Flush(ctx context.Context) {
	s.mu.Lock()
	pending := s.staged
	s.staged = make(map[string]*store.Draft)
	s.mu.Unlock()

	for authorID, draft := range pending {
		if err := s.store.Drafts.Save(ctx, authorID, draft); err != nil {
			if s.logger != nil {
				s.logger.Warn("autosave flush failed", "author_id", authorID, "error", err)
			}
			s.mu.Lock()
			if _, replaced := s.staged[authorID]; !replaced {
				s.staged[authorID] = draft
			}
			s.mu.Unlock()
			continue
		}
		if s.logger != nil {
			s.logger.Debug("autosaved draft", "author_id", authorID)
		}
	}
}
