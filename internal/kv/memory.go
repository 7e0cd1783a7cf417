package kv

import (
	"context"
	"encoding/json/v2"
	"sync"

	apperrors "github.com/storysphere/storysphere-server/internal/errors"
)

// MemoryAdapter is an in-memory Adapter for tests and ephemeral runs.
// Payloads round-trip through JSON so type fidelity matches the real
// adapter.
type MemoryAdapter struct {
	mu    sync.RWMutex
	slots map[string][]byte

	// FailWrites makes every Write return a persistence error. Used to
	// exercise revert paths in tests.
	FailWrites bool
}

var _ Adapter = (*MemoryAdapter)(nil)

// NewMemory creates an empty in-memory adapter.
func NewMemory() *MemoryAdapter {
	return &MemoryAdapter{slots: make(map[string][]byte)}
}

// Read implements Adapter.
func (a *MemoryAdapter) Read(ctx context.Context, slot string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	a.mu.RLock()
	raw, ok := a.slots[slot]
	a.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, nil
	}
	return true, nil
}

// Write implements Adapter.
func (a *MemoryAdapter) Write(ctx context.Context, slot string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.FailWrites {
		return apperrors.Persistence("write slot").WithDetails(map[string]any{"slot": slot})
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodePersistence, "encode slot").WithDetails(map[string]any{"slot": slot})
	}

	a.mu.Lock()
	a.slots[slot] = raw
	a.mu.Unlock()
	return nil
}

// Remove implements Adapter.
func (a *MemoryAdapter) Remove(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	delete(a.slots, slot)
	a.mu.Unlock()
	return nil
}

// Slots implements Adapter.
func (a *MemoryAdapter) Slots(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.slots))
	for name := range a.slots {
		names = append(names, name)
	}
	return names, nil
}

// Close implements Adapter.
func (a *MemoryAdapter) Close() error { return nil }
