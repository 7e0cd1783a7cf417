// Package kv is the persistence boundary for the collection store. An
// Adapter reads and writes whole collection snapshots keyed by slot
// name, mirroring a remote document backend: opaque blobs in, opaque
// blobs out.
package kv

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/storysphere/storysphere-server/internal/errors"
)

// slotPrefix namespaces collection slots inside the shared database.
const slotPrefix = "slot:"

// Adapter persists one JSON document per named slot.
type Adapter interface {
	// Read unmarshals the slot into dest. A missing slot returns
	// (false, nil) and leaves dest untouched. A corrupt slot is treated
	// as missing so a bad write can never brick the store.
	Read(ctx context.Context, slot string, dest any) (bool, error)

	// Write marshals value and replaces the slot atomically.
	Write(ctx context.Context, slot string, value any) error

	// Remove deletes the slot. Removing an absent slot is not an error.
	Remove(ctx context.Context, slot string) error

	// Slots lists every stored slot name.
	Slots(ctx context.Context) ([]string, error)

	Close() error
}

// BadgerAdapter implements Adapter on an embedded Badger database.
type BadgerAdapter struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ Adapter = (*BadgerAdapter)(nil)

// OpenBadger opens (or creates) the database at path.
func OpenBadger(path string, logger *slog.Logger) (*BadgerAdapter, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &BadgerAdapter{db: db, logger: logger}, nil
}

// Read implements Adapter.
func (a *BadgerAdapter) Read(ctx context.Context, slot string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var raw []byte
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(slotPrefix + slot))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodePersistence, "read slot").WithDetails(map[string]any{"slot": slot})
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		// Corrupt payloads degrade to an empty slot rather than a hard
		// failure; the damage is logged so it can be investigated.
		if a.logger != nil {
			a.logger.Warn("discarding corrupt slot payload", "slot", slot, "error", err)
		}
		return false, nil
	}
	return true, nil
}

// Write implements Adapter.
func (a *BadgerAdapter) Write(ctx context.Context, slot string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodePersistence, "encode slot").WithDetails(map[string]any{"slot": slot})
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(slotPrefix+slot), raw)
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodePersistence, "write slot").WithDetails(map[string]any{"slot": slot})
	}
	return nil
}

// Remove implements Adapter.
func (a *BadgerAdapter) Remove(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(slotPrefix + slot))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.Wrap(err, apperrors.CodePersistence, "remove slot").WithDetails(map[string]any{"slot": slot})
	}
	return nil
}

// Slots implements Adapter.
func (a *BadgerAdapter) Slots(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var slots []string
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(slotPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			slots = append(slots, string(key[len(slotPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodePersistence, "list slots")
	}
	return slots, nil
}

// Close flushes and closes the underlying database.
func (a *BadgerAdapter) Close() error {
	return a.db.Close()
}
