package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhs-shine/kimaki/cmd/kimaki/cli/gitstate"
)

func TestStore_GetMissingEntry(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())

	entry, err := store.Get(context.Background(), "ses_unknown")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestStore_PutThenGet(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())
	ctx := context.Background()

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	original := &Entry{
		SessionID: "ses_abc123",
		LastGit: &gitstate.State{
			Key:   "branch:main",
			Kind:  gitstate.KindBranch,
			Label: "main",
		},
		LastMessageAt: &at,
	}
	require.NoError(t, store.Put(ctx, original))

	loaded, err := store.Get(ctx, "ses_abc123")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "ses_abc123", loaded.SessionID)
	require.NotNil(t, loaded.LastGit)
	assert.Equal(t, "branch:main", loaded.LastGit.Key)
	require.NotNil(t, loaded.LastMessageAt)
	assert.True(t, at.Equal(*loaded.LastMessageAt))
}

func TestStore_PutReplacesEntry(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &Entry{
		SessionID: "ses_abc123",
		LastGit:   &gitstate.State{Key: "branch:main", Kind: gitstate.KindBranch, Label: "main"},
	}))
	require.NoError(t, store.Put(ctx, &Entry{
		SessionID: "ses_abc123",
		LastGit:   &gitstate.State{Key: "branch:feature", Kind: gitstate.KindBranch, Label: "feature"},
	}))

	loaded, err := store.Get(ctx, "ses_abc123")
	require.NoError(t, err)
	require.NotNil(t, loaded.LastGit)
	assert.Equal(t, "branch:feature", loaded.LastGit.Key)
}

func TestStore_PutLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreWithDir(dir)

	require.NoError(t, store.Put(context.Background(), &Entry{SessionID: "ses_abc123"}))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "ses_abc123.json", files[0].Name())
}

func TestStore_DeleteRemovesEntry(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &Entry{SessionID: "ses_abc123"}))
	require.NoError(t, store.Delete(ctx, "ses_abc123"))

	entry, err := store.Get(ctx, "ses_abc123")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestStore_DeleteMissingEntryIsNoOp(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())
	assert.NoError(t, store.Delete(context.Background(), "ses_never_existed"))
}

func TestStore_RejectsPathTraversalSessionID(t *testing.T) {
	store := NewStoreWithDir(t.TempDir())
	ctx := context.Background()

	_, err := store.Get(ctx, "../escape")
	assert.Error(t, err)

	err = store.Put(ctx, &Entry{SessionID: "../escape"})
	assert.Error(t, err)

	err = store.Delete(ctx, "../escape")
	assert.Error(t, err)
}

func TestStore_GetCorruptedEntry(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreWithDir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ses_bad.json"), []byte("not json"), 0o600))

	_, err := store.Get(context.Background(), "ses_bad")
	assert.Error(t, err)
}

func TestStore_List(t *testing.T) {
	dir := t.TempDir()
	store := NewStoreWithDir(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &Entry{SessionID: "ses_one"}))
	require.NoError(t, store.Put(ctx, &Entry{SessionID: "ses_two"}))
	// Corrupted files are skipped, not fatal.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ses_bad.json"), []byte("{"), 0o600))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStore_ListMissingDirectory(t *testing.T) {
	store := NewStoreWithDir(filepath.Join(t.TempDir(), "never-created"))

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryRegistry_GetMissingEntry(t *testing.T) {
	registry := NewMemoryRegistry()

	entry, err := registry.Get(context.Background(), "ses_unknown")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMemoryRegistry_PutCopiesEntry(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	entry := &Entry{SessionID: "ses_abc123"}
	require.NoError(t, registry.Put(ctx, entry))

	// Mutating the caller's value after Put must not affect stored state.
	at := time.Now()
	entry.LastMessageAt = &at

	loaded, err := registry.Get(ctx, "ses_abc123")
	require.NoError(t, err)
	assert.Nil(t, loaded.LastMessageAt)
}

func TestMemoryRegistry_PutRequiresSessionID(t *testing.T) {
	registry := NewMemoryRegistry()
	assert.Error(t, registry.Put(context.Background(), &Entry{}))
}

func TestMemoryRegistry_Delete(t *testing.T) {
	registry := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, registry.Put(ctx, &Entry{SessionID: "ses_abc123"}))
	require.NoError(t, registry.Delete(ctx, "ses_abc123"))
	require.NoError(t, registry.Delete(ctx, "ses_abc123"))

	entry, err := registry.Get(ctx, "ses_abc123")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
