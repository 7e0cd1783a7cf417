package store

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/kv"
	"github.com/storysphere/storysphere-server/internal/latency"
)

// Collection provides generic CRUD operations over one persistence slot.
// The whole collection is loaded, modified, and written back on every
// mutation; a per-collection mutex serializes writers so concurrent
// mutations cannot clobber each other. Across processes the write is
// last-write-wins, matching the document-blob backend underneath.
type Collection[T any] struct {
	mu      sync.Mutex
	adapter kv.Adapter
	gate    *latency.Gate
	slot    string
	idOf    func(*T) string
	keys    []UniqueKey[T]
}

// UniqueKey defines a secondary unique constraint on a collection.
type UniqueKey[T any] struct {
	name   string
	keyGen func(*T) string
}

// NewCollection creates a collection bound to the given slot.
// idOf extracts the primary identifier from an item.
func NewCollection[T any](adapter kv.Adapter, gate *latency.Gate, slot string, idOf func(*T) string) *Collection[T] {
	return &Collection[T]{
		adapter: adapter,
		gate:    gate,
		slot:    slot,
		idOf:    idOf,
	}
}

// WithUniqueKey adds a secondary unique constraint. An empty generated
// key is exempt from the constraint.
func (c *Collection[T]) WithUniqueKey(name string, keyGen func(*T) string) *Collection[T] {
	c.keys = append(c.keys, UniqueKey[T]{name: name, keyGen: keyGen})
	return c
}

// Slot returns the collection's slot name.
func (c *Collection[T]) Slot() string {
	return c.slot
}

// load reads the full collection. A missing or corrupt slot yields an
// empty collection.
func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	if err := c.gate.Wait(ctx); err != nil {
		return nil, err
	}

	var items []T
	if _, err := c.adapter.Read(ctx, c.slot, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// save writes the full collection back.
func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if err := c.gate.Wait(ctx); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	return c.adapter.Write(ctx, c.slot, items)
}

// All returns every item in the collection.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Find returns the items matching the predicate.
func (c *Collection[T]) Find(ctx context.Context, match func(*T) bool) ([]T, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []T
	for i := range items {
		if match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// GetByID retrieves an item by primary identifier.
// Returns a not-found error if no item matches.
func (c *Collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if c.idOf(&items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, apperrors.NotFoundf("%s %q not found", c.slot, id)
}

// GetByKey retrieves an item by a named unique key.
func (c *Collection[T]) GetByKey(ctx context.Context, name, value string) (*T, error) {
	key := c.uniqueKey(name)
	if key == nil {
		return nil, apperrors.Internalf("collection %s has no unique key %q", c.slot, name)
	}

	items, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if key.keyGen(&items[i]) == value {
			return &items[i], nil
		}
	}
	return nil, apperrors.NotFoundf("%s %q not found", c.slot, value)
}

// Insert adds a new item. Returns an already-exists error when the ID
// or any unique key collides with an existing item.
func (c *Collection[T]) Insert(ctx context.Context, item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}

	id := c.idOf(item)
	for i := range items {
		if c.idOf(&items[i]) == id {
			return apperrors.AlreadyExistsf("%s %q already exists", c.slot, id)
		}
	}
	if err := c.checkUniqueKeys(items, item, id); err != nil {
		return err
	}

	return c.save(ctx, append(items, *item))
}

// Update replaces the item with the same ID.
// Returns a not-found error if the item does not exist and an
// already-exists error when the update would violate a unique key.
func (c *Collection[T]) Update(ctx context.Context, item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}

	id := c.idOf(item)
	pos := -1
	for i := range items {
		if c.idOf(&items[i]) == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return apperrors.NotFoundf("%s %q not found", c.slot, id)
	}
	if err := c.checkUniqueKeys(items, item, id); err != nil {
		return err
	}

	items[pos] = *item
	return c.save(ctx, items)
}

// Remove deletes the item with the given ID.
// Returns a not-found error if no item matches.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}

	for i := range items {
		if c.idOf(&items[i]) == id {
			return c.save(ctx, append(items[:i], items[i+1:]...))
		}
	}
	return apperrors.NotFoundf("%s %q not found", c.slot, id)
}

// Mutate runs an arbitrary read-modify-write step under the collection
// lock. The callback receives the current items and returns the full
// replacement collection. Returning an error aborts without writing.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.save(ctx, next)
}

// Replace overwrites the whole collection. Used by seeding and imports.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, items)
}

// Count returns the number of items in the collection.
func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	items, err := c.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (c *Collection[T]) uniqueKey(name string) *UniqueKey[T] {
	for i := range c.keys {
		if c.keys[i].name == name {
			return &c.keys[i]
		}
	}
	return nil
}

// checkUniqueKeys verifies item against every unique constraint,
// ignoring the item's own row (matched by selfID).
func (c *Collection[T]) checkUniqueKeys(items []T, item *T, selfID string) error {
	for _, key := range c.keys {
		want := key.keyGen(item)
		if want == "" {
			continue
		}
		for i := range items {
			if c.idOf(&items[i]) == selfID {
				continue
			}
			if key.keyGen(&items[i]) == want {
				return apperrors.AlreadyExistsf("%s with %s %q already exists", c.slot, key.name, want).
					WithDetails(map[string]any{"key": key.name, "value": want})
			}
		}
	}
	return nil
}

// String implements fmt.Stringer for debug logging.
func (c *Collection[T]) String() string {
	return fmt.Sprintf("collection(%s)", c.slot)
}
