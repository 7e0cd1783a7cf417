// Package store is the entity layer of the platform. Each domain
// collection lives in its own persistence slot and is mutated through
// whole-collection read-modify-write, the contract the kv adapter
// provides.
package store

import (
	"log/slog"

	"github.com/storysphere/storysphere-server/internal/domain"
	"github.com/storysphere/storysphere-server/internal/kv"
	"github.com/storysphere/storysphere-server/internal/latency"
)

// Slot names. These are the stable on-disk identifiers; renaming one
// orphans existing data.
const (
	SlotStories   = "storysphere_stories"
	SlotTags      = "storysphere_tags"
	SlotBookmarks = "storysphere_bookmarks"
	SlotComments  = "storysphere_comments"
	SlotUsers     = "storysphere_users"
)

// Store aggregates the platform's entity collections over one adapter.
type Store struct {
	adapter kv.Adapter
	logger  *slog.Logger

	Stories   *Collection[domain.Story]
	Tags      *Collection[domain.Tag]
	Bookmarks *Collection[domain.Bookmark]
	Comments  *Collection[domain.Comment]
	Users     *Collection[domain.User]
	Drafts    *Drafts
}

// New creates a Store over the given adapter. The latency gate applies
// to every collection so the whole store behaves like one remote
// backend.
func New(adapter kv.Adapter, gate *latency.Gate, logger *slog.Logger) *Store {
	s := &Store{
		adapter: adapter,
		logger:  logger,
	}

	s.Stories = NewCollection(adapter, gate, SlotStories, func(st *domain.Story) string { return st.ID }).
		WithUniqueKey("slug", func(st *domain.Story) string { return st.Slug })

	s.Tags = NewCollection(adapter, gate, SlotTags, func(t *domain.Tag) string { return t.ID }).
		WithUniqueKey("slug", func(t *domain.Tag) string { return t.Slug })

	s.Bookmarks = NewCollection(adapter, gate, SlotBookmarks, func(b *domain.Bookmark) string { return b.ID }).
		WithUniqueKey("pair", func(b *domain.Bookmark) string { return b.Key() })

	s.Comments = NewCollection(adapter, gate, SlotComments, func(c *domain.Comment) string { return c.ID })

	s.Users = NewCollection(adapter, gate, SlotUsers, func(u *domain.User) string { return u.ID }).
		WithUniqueKey("username", func(u *domain.User) string { return u.Username })

	s.Drafts = NewDrafts(adapter, gate)

	return s
}

// Close releases the underlying adapter.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing entity store")
	}
	return s.adapter.Close()
}
