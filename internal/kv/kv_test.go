package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// adapters under test share one behavioral contract.
func adapters(t *testing.T) map[string]Adapter {
	t.Helper()

	badgerAdapter, err := OpenBadger(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = badgerAdapter.Close() })

	return map[string]Adapter{
		"badger": badgerAdapter,
		"memory": NewMemory(),
	}
}

func TestAdapter_ReadMissingSlot(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			var dest []record
			found, err := a.Read(context.Background(), "nope", &dest)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, dest)
		})
	}
}

func TestAdapter_WriteReadRoundTrip(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := []record{{ID: "a", Count: 1}, {ID: "b", Count: 2}}
			require.NoError(t, a.Write(ctx, "records", in))

			var out []record
			found, err := a.Read(ctx, "records", &out)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, in, out)
		})
	}
}

func TestAdapter_WriteReplacesWholeSlot(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, a.Write(ctx, "records", []record{{ID: "a"}, {ID: "b"}}))
			require.NoError(t, a.Write(ctx, "records", []record{{ID: "c"}}))

			var out []record
			found, err := a.Read(ctx, "records", &out)
			require.NoError(t, err)
			assert.True(t, found)
			require.Len(t, out, 1)
			assert.Equal(t, "c", out[0].ID)
		})
	}
}

func TestAdapter_MismatchedPayloadTreatedAsMissing(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, a.Write(ctx, "records", "not a collection"))

			var out []record
			found, err := a.Read(ctx, "records", &out)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestAdapter_RemoveIsIdempotent(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, a.Write(ctx, "records", []record{{ID: "a"}}))
			require.NoError(t, a.Remove(ctx, "records"))
			require.NoError(t, a.Remove(ctx, "records"), "removing an absent slot is fine")

			var out []record
			found, err := a.Read(ctx, "records", &out)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestAdapter_Slots(t *testing.T) {
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, a.Write(ctx, "stories", []record{}))
			require.NoError(t, a.Write(ctx, "tags", []record{}))

			slots, err := a.Slots(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"stories", "tags"}, slots)
		})
	}
}

func TestAdapter_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewMemory()
	_, err := a.Read(ctx, "records", &[]record{})
	assert.Error(t, err)
	assert.Error(t, a.Write(ctx, "records", []record{}))
}

func TestMemoryAdapter_FailWrites(t *testing.T) {
	a := NewMemory()
	a.FailWrites = true

	err := a.Write(context.Background(), "records", []record{{ID: "a"}})
	require.Error(t, err)
}
