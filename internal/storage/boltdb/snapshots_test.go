package boltdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essaykeeper/essaykeeper/internal/delta"
	"github.com/essaykeeper/essaykeeper/internal/models"
	"github.com/essaykeeper/essaykeeper/internal/storage"
	"github.com/essaykeeper/essaykeeper/internal/textutil"
)

// createTestSnapshot формирует тестовый снапшот
func createTestSnapshot(snapshotID, essayID, content string, seq int64) *models.Snapshot {
	return &models.Snapshot{
		SnapshotID: snapshotID,
		EssayID:    essayID,
		UserID:     "user-123",
		Content:    content,
		Delta:      delta.Full(content),
		Seq:        seq,
		Timestamp:  seq * 1000,
		WordCount:  textutil.WordCount(content),
	}
}

func TestSaveGetSnapshot(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	snap := createTestSnapshot("snap-1", "essay-1", "hello world", 1)
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.GetSnapshot(ctx, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, snap.EssayID, got.EssayID)
	assert.Equal(t, snap.Content, got.Content)
	assert.Equal(t, delta.TypeFull, got.Delta.Type)
	assert.Equal(t, int64(1), got.Seq)

	_, err = store.GetSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

func TestListSnapshots_Ordering(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	for i := int64(1); i <= 4; i++ {
		snap := createTestSnapshot(fmt.Sprintf("snap-%d", i), "essay-1", fmt.Sprintf("v%d", i), i)
		require.NoError(t, store.SaveSnapshot(ctx, snap))
	}
	// Снапшот другого документа не должен попадать в выборку
	require.NoError(t, store.SaveSnapshot(ctx, createTestSnapshot("other", "essay-2", "x", 1)))

	// Новые первыми
	desc, err := store.ListSnapshots(ctx, "essay-1", 0)
	require.NoError(t, err)
	require.Len(t, desc, 4)
	assert.Equal(t, "snap-4", desc[0].SnapshotID)
	assert.Equal(t, "snap-1", desc[3].SnapshotID)

	// Limit обрезает после сортировки
	limited, err := store.ListSnapshots(ctx, "essay-1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "snap-4", limited[0].SnapshotID)

	// Восходящий порядок для регидрации стека
	asc, err := store.ListSnapshotsAsc(ctx, "essay-1")
	require.NoError(t, err)
	require.Len(t, asc, 4)
	assert.Equal(t, "snap-1", asc[0].SnapshotID)
	assert.Equal(t, "snap-4", asc[3].SnapshotID)
}

func TestDeleteSnapshot(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveSnapshot(ctx, createTestSnapshot("snap-1", "essay-1", "v1", 1)))
	require.NoError(t, store.DeleteSnapshot(ctx, "snap-1"))

	_, err := store.GetSnapshot(ctx, "snap-1")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	err = store.DeleteSnapshot(ctx, "snap-1")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}

func TestClearSnapshots(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, store.SaveSnapshot(ctx, createTestSnapshot(fmt.Sprintf("a-%d", i), "essay-1", "v", i)))
	}
	require.NoError(t, store.SaveSnapshot(ctx, createTestSnapshot("b-1", "essay-2", "v", 1)))

	removed, err := store.ClearSnapshots(ctx, "essay-1")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	// Чужой документ не затронут
	left, err := store.ListSnapshots(ctx, "essay-2", 0)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestTrimSnapshots(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	for i := int64(1); i <= 5; i++ {
		snap := createTestSnapshot(fmt.Sprintf("snap-%d", i), "essay-1", fmt.Sprintf("v%d", i), i)
		require.NoError(t, store.SaveSnapshot(ctx, snap))
	}

	// Вытесняются два самых старых
	evicted, err := store.TrimSnapshots(ctx, "essay-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, evicted)

	left, err := store.ListSnapshotsAsc(ctx, "essay-1")
	require.NoError(t, err)
	require.Len(t, left, 3)
	assert.Equal(t, "snap-3", left[0].SnapshotID)
	assert.Equal(t, "snap-5", left[2].SnapshotID)

	// Ниже предела — no-op
	evicted, err = store.TrimSnapshots(ctx, "essay-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 0, evicted)
}

func TestSnapshotSyncBookkeeping(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	synced := createTestSnapshot("snap-1", "essay-1", "v1", 1)
	synced.Synced = true
	require.NoError(t, store.SaveSnapshot(ctx, synced))
	require.NoError(t, store.SaveSnapshot(ctx, createTestSnapshot("snap-2", "essay-1", "v2", 2)))
	require.NoError(t, store.SaveSnapshot(ctx, createTestSnapshot("snap-3", "essay-1", "v3", 3)))

	unsynced, err := store.GetUnsyncedSnapshots(ctx, "essay-1")
	require.NoError(t, err)
	require.Len(t, unsynced, 2)
	assert.Equal(t, "snap-2", unsynced[0].SnapshotID)

	require.NoError(t, store.MarkSnapshotSynced(ctx, "snap-2"))

	unsynced, err = store.GetUnsyncedSnapshots(ctx, "essay-1")
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, "snap-3", unsynced[0].SnapshotID)

	err = store.MarkSnapshotSynced(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
}
