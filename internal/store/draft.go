package store

import (
	"context"
	"time"

	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/kv"
	"github.com/storysphere/storysphere-server/internal/latency"
)

// draftSlotPrefix namespaces per-author draft slots.
const draftSlotPrefix = "storysphere_draft:"

// Draft is the work-in-progress story an author is editing. One draft
// slot exists per author; saving replaces it wholesale. StoryID is set
// when the draft edits an existing story.
type Draft struct {
	SavedAt  time.Time `json:"savedAt"`
	StoryID  string    `json:"storyId,omitempty"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Content  string    `json:"content"`
	Tags     []string  `json:"tags,omitempty"`
}

// Drafts persists per-author draft slots directly on the adapter.
type Drafts struct {
	adapter kv.Adapter
	gate    *latency.Gate
}

// NewDrafts creates the draft accessor.
func NewDrafts(adapter kv.Adapter, gate *latency.Gate) *Drafts {
	return &Drafts{adapter: adapter, gate: gate}
}

func draftSlot(authorID string) string {
	return draftSlotPrefix + authorID
}

// Save replaces the author's draft and stamps SavedAt.
func (d *Drafts) Save(ctx context.Context, authorID string, draft *Draft) error {
	if err := d.gate.Wait(ctx); err != nil {
		return err
	}
	draft.SavedAt = time.Now()
	return d.adapter.Write(ctx, draftSlot(authorID), draft)
}

// Get returns the author's draft.
// Returns a not-found error when no draft is stored.
func (d *Drafts) Get(ctx context.Context, authorID string) (*Draft, error) {
	if err := d.gate.Wait(ctx); err != nil {
		return nil, err
	}

	var draft Draft
	found, err := d.adapter.Read(ctx, draftSlot(authorID), &draft)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFoundf("no draft for author %q", authorID)
	}
	return &draft, nil
}

// Discard removes the author's draft. Discarding an absent draft is a
// no-op.
func (d *Drafts) Discard(ctx context.Context, authorID string) error {
	if err := d.gate.Wait(ctx); err != nil {
		return err
	}
	return d.adapter.Remove(ctx, draftSlot(authorID))
}
