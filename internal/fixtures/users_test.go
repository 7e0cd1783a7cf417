package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storysphere/storysphere-server/internal/kv"
	"github.com/storysphere/storysphere-server/internal/latency"
	"github.com/storysphere/storysphere-server/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(kv.NewMemory(), latency.NewGate(0), nil)
}

func TestLoad_EmbeddedDefaults(t *testing.T) {
	users, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, users)

	for _, u := range users {
		assert.NotEmpty(t, u.ID)
		assert.NotEmpty(t, u.Username)
		assert.NotEmpty(t, u.AvatarColor, "missing colors are filled in deterministically")
		assert.False(t, u.CreatedAt.IsZero())
	}
}

func TestEnsureUsers_SeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, EnsureUsers(ctx, s, ""))

	count, err := s.Users.Count(ctx)
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	// Seeding again does not wipe local changes.
	u, err := s.Users.GetByKey(ctx, "username", "sarahwrites")
	require.NoError(t, err)
	u.Bio = "edited"
	require.NoError(t, s.Users.Update(ctx, u))

	require.NoError(t, EnsureUsers(ctx, s, ""))
	got, err := s.Users.GetByKey(ctx, "username", "sarahwrites")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Bio)
}

func TestEnsureUsers_FileOverridesDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "user-x", "name": "X", "username": "xuser", "email": "x@example.com"}
	]`), 0o644))

	require.NoError(t, EnsureUsers(ctx, s, path))

	users, err := s.Users.All(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "user-x", users[0].ID)
	assert.NotEmpty(t, users[0].AvatarColor)
}

func TestSync_KeepsPreferences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	users, err := Load()
	require.NoError(t, err)
	require.NoError(t, Sync(ctx, s, users))

	u, err := s.Users.GetByID(ctx, "user-1")
	require.NoError(t, err)
	u.Preferences = map[string]any{"theme": "dark"}
	require.NoError(t, s.Users.Update(ctx, u))

	// Re-sync the same roster; the preference bag survives.
	fresh, err := Load()
	require.NoError(t, err)
	require.NoError(t, Sync(ctx, s, fresh))

	got, err := s.Users.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Preferences["theme"])
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "user-a", "name": "A", "username": "a", "email": "a@example.com"}
	]`), 0o644))
	require.NoError(t, EnsureUsers(ctx, s, path))

	w := NewWatcher(path, s, nil)
	require.NoError(t, w.Start(ctx))
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "user-a", "name": "A", "username": "a", "email": "a@example.com"},
		{"id": "user-b", "name": "B", "username": "b", "email": "b@example.com"}
	]`), 0o644))

	assert.Eventually(t, func() bool {
		count, err := s.Users.Count(ctx)
		return err == nil && count == 2
	}, 3*time.Second, 50*time.Millisecond)
}

func TestWatcher_InvalidUpdateKeepsRoster(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "user-a", "name": "A", "username": "a", "email": "a@example.com"}
	]`), 0o644))
	require.NoError(t, EnsureUsers(ctx, s, path))

	w := NewWatcher(path, s, nil)
	require.NoError(t, w.Start(ctx))
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	// Give the debounce a chance to fire, then confirm nothing changed.
	time.Sleep(500 * time.Millisecond)
	count, err := s.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
