package threads

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStoreWithFile(filepath.Join(t.TempDir(), "threads.json"))
}

func TestThreadForSession_Unlinked(t *testing.T) {
	store := newTestStore(t)

	threadID, err := store.ThreadForSession(context.Background(), "ses_abc123")
	require.NoError(t, err)
	assert.Empty(t, threadID)
}

func TestLinkThenResolve(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Link(ctx, "ses_abc123", "1234567890"))

	threadID, err := store.ThreadForSession(ctx, "ses_abc123")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", threadID)
}

func TestLink_ReplacesPreviousThread(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Link(ctx, "ses_abc123", "1111"))
	require.NoError(t, store.Link(ctx, "ses_abc123", "2222"))

	threadID, err := store.ThreadForSession(ctx, "ses_abc123")
	require.NoError(t, err)
	assert.Equal(t, "2222", threadID)
}

func TestLink_RejectsInvalidIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.Link(ctx, "../escape", "1234"))
	assert.Error(t, store.Link(ctx, "ses_abc123", "bad/thread"))
	assert.Error(t, store.Link(ctx, "ses_abc123", ""))
}

func TestUnlink(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Link(ctx, "ses_abc123", "1234"))
	require.NoError(t, store.Unlink(ctx, "ses_abc123"))

	threadID, err := store.ThreadForSession(ctx, "ses_abc123")
	require.NoError(t, err)
	assert.Empty(t, threadID)

	// Unlinking again is a no-op.
	assert.NoError(t, store.Unlink(ctx, "ses_abc123"))
}

func TestList_SortedBySessionID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Link(ctx, "ses_bbb", "2222"))
	require.NoError(t, store.Link(ctx, "ses_aaa", "1111"))

	links, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, Link{SessionID: "ses_aaa", ThreadID: "1111"}, links[0])
	assert.Equal(t, Link{SessionID: "ses_bbb", ThreadID: "2222"}, links[1])
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "threads.json")
	ctx := context.Background()

	first := NewStoreWithFile(filePath)
	require.NoError(t, first.Link(ctx, "ses_abc123", "1234"))

	second := NewStoreWithFile(filePath)
	threadID, err := second.ThreadForSession(ctx, "ses_abc123")
	require.NoError(t, err)
	assert.Equal(t, "1234", threadID)
}

func TestStore_CorruptedFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "threads.json")
	require.NoError(t, os.WriteFile(filePath, []byte("not json"), 0o600))

	store := NewStoreWithFile(filePath)
	_, err := store.ThreadForSession(context.Background(), "ses_abc123")
	assert.Error(t, err)
}

func TestStore_CreatesParentDirectory(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "nested", "threads.json")
	store := NewStoreWithFile(filePath)

	require.NoError(t, store.Link(context.Background(), "ses_abc123", "1234"))

	_, err := os.Stat(filePath)
	assert.NoError(t, err)
}
