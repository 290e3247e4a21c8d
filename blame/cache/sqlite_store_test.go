package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massimiliano76/nuclide/blame"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "blame.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorePutGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snap := blame.Snapshot{
		0: {Author: "alice", Changeset: "abc12345"},
		4: {Author: "bob"},
	}
	require.NoError(t, store.Put(ctx, "/repo/main.go", "rev1", snap))

	got, ok, err := store.Get(ctx, "/repo/main.go", "rev1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap, got)
}

func TestSQLiteStoreMiss(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "/repo/main.go", "rev1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStorePutReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "/repo/main.go", "rev1", blame.Snapshot{
		0: {Author: "alice", Changeset: "abc12345"},
		1: {Author: "alice", Changeset: "abc12345"},
	}))
	require.NoError(t, store.Put(ctx, "/repo/main.go", "rev1", blame.Snapshot{
		0: {Author: "bob", Changeset: "def67890"},
	}))

	got, ok, err := store.Get(ctx, "/repo/main.go", "rev1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].Author)
}

func TestSQLiteStoreEmptySnapshotNotCached(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "/repo/empty.go", "rev1", blame.Snapshot{}))
	_, ok, err := store.Get(ctx, "/repo/empty.go", "rev1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStorePrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "/repo/a.go", "rev1", blame.Snapshot{0: {Author: "alice"}}))
	require.NoError(t, store.Put(ctx, "/repo/a.go", "rev2", blame.Snapshot{0: {Author: "bob"}}))

	require.NoError(t, store.Prune(ctx, "rev2"))

	_, ok, err := store.Get(ctx, "/repo/a.go", "rev1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Get(ctx, "/repo/a.go", "rev2")
	require.NoError(t, err)
	assert.True(t, ok)
}
