// Package fixtures supplies the platform's member roster. Users come
// from a JSON fixture file instead of a signup flow; an embedded
// default set ships with the binary and an external file can override
// it and be hot-reloaded while the server runs.
package fixtures

import (
	"context"
	_ "embed"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/storysphere/storysphere-server/internal/color"
	"github.com/storysphere/storysphere-server/internal/domain"
	"github.com/storysphere/storysphere-server/internal/store"
)

//go:embed users.json
var defaultUsers []byte

// Load parses the embedded default users.
func Load() ([]domain.User, error) {
	return parse(defaultUsers)
}

// LoadFile parses users from an external fixture file.
func LoadFile(path string) ([]domain.User, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- fixture path comes from config
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) ([]domain.User, error) {
	var users []domain.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	now := time.Now()
	for i := range users {
		if users[i].AvatarColor == "" {
			users[i].AvatarColor = color.ForUser(users[i].ID)
		}
		if users[i].CreatedAt.IsZero() {
			users[i].CreatedAt = now
		}
		if users[i].UpdatedAt.IsZero() {
			users[i].UpdatedAt = users[i].CreatedAt
		}
	}
	return users, nil
}

// Sync replaces the user collection with the given roster, keeping
// preference bags of users that already exist.
func Sync(ctx context.Context, s *store.Store, users []domain.User) error {
	existing, err := s.Users.All(ctx)
	if err != nil {
		return err
	}
	prefs := make(map[string]map[string]any, len(existing))
	for i := range existing {
		if existing[i].Preferences != nil {
			prefs[existing[i].ID] = existing[i].Preferences
		}
	}
	for i := range users {
		if p, ok := prefs[users[i].ID]; ok && users[i].Preferences == nil {
			users[i].Preferences = p
		}
	}
	return s.Users.Replace(ctx, users)
}

// EnsureUsers seeds the user collection. With a fixtures path configured
// the file wins; otherwise the embedded defaults populate an empty
// collection and an already-seeded one is left alone.
func EnsureUsers(ctx context.Context, s *store.Store, path string) error {
	if path != "" {
		users, err := LoadFile(path)
		if err != nil {
			return err
		}
		return Sync(ctx, s, users)
	}

	count, err := s.Users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	users, err := Load()
	if err != nil {
		return err
	}
	return Sync(ctx, s, users)
}

// Watcher hot-reloads an external fixture file into the store.
type Watcher struct {
	path   string
	store  *store.Store
	logger *slog.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for the given fixture file.
func NewWatcher(path string, s *store.Store, logger *slog.Logger) *Watcher {
	return &Watcher{
		path:   path,
		store:  s,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than
// the file itself so editors that replace-on-save keep working.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fw

	go w.run(ctx)
	if w.logger != nil {
		w.logger.Info("watching user fixtures", "path", w.path)
	}
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	// Debounce bursts of events from editors that write in chunks.
	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reload = time.After(200 * time.Millisecond)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("fixture watcher error", "error", err)
			}
		case <-reload:
			reload = nil
			w.apply(ctx)
		}
	}
}

func (w *Watcher) apply(ctx context.Context) {
	users, err := LoadFile(w.path)
	if err != nil {
		// A half-written or invalid file keeps the previous roster.
		if w.logger != nil {
			w.logger.Warn("ignoring invalid fixture update", "path", w.path, "error", err)
		}
		return
	}
	if err := Sync(ctx, w.store, users); err != nil {
		if w.logger != nil {
			w.logger.Error("failed to apply fixture update", "error", err)
		}
		return
	}
	if w.logger != nil {
		w.logger.Info("reloaded user fixtures", "count", len(users))
	}
}

// Close stops the watcher and waits for the event loop to drain.
func (w *Watcher) Close() error {
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}
