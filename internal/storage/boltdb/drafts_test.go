package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essaykeeper/essaykeeper/internal/models"
	"github.com/essaykeeper/essaykeeper/internal/storage"
	"github.com/essaykeeper/essaykeeper/internal/textutil"
)

// createTestStorage создает временное BoltDB хранилище
func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "essaykeeper_test.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

// createTestDraft формирует тестовый черновик
func createTestDraft(essayID, userID, content string, timestamp int64) *models.Draft {
	return &models.Draft{
		EssayID:     essayID,
		UserID:      userID,
		Content:     content,
		ContentHash: textutil.HashContent(content),
		Timestamp:   timestamp,
		Version:     1,
		WordCount:   textutil.WordCount(content),
	}
}

func TestSaveGetDraft(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	draft := createTestDraft("essay-1", "user-123", "hello world", 1000)

	// Сохраняем черновик
	require.NoError(t, store.SaveDraft(ctx, draft))

	// Получаем по essayID
	got, err := store.GetDraft(ctx, "essay-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, draft.EssayID, got.EssayID)
	assert.Equal(t, draft.Content, got.Content)
	assert.Equal(t, draft.ContentHash, got.ContentHash)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, 2, got.WordCount)
	assert.False(t, got.Synced)
}

func TestGetDraft_NotFound(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, err := store.GetDraft(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrDraftNotFound)
}

func TestSaveDraft_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveDraft(ctx, createTestDraft("essay-1", "u", "first", 1000)))

	updated := createTestDraft("essay-1", "u", "second version", 2000)
	updated.Version = 2
	require.NoError(t, store.SaveDraft(ctx, updated))

	// На essayID существует ровно один черновик
	got, err := store.GetDraft(ctx, "essay-1")
	require.NoError(t, err)
	assert.Equal(t, "second version", got.Content)
	assert.Equal(t, int64(2), got.Version)

	drafts, err := store.ListDrafts(ctx, storage.DraftFilter{})
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestListDrafts_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	oldDraft := createTestDraft("essay-1", "alice", "old", 1000)
	newDraft := createTestDraft("essay-2", "alice", "new", 3000)
	otherUser := createTestDraft("essay-3", "bob", "other", 2000)
	otherUser.Synced = true

	require.NoError(t, store.SaveDraft(ctx, oldDraft))
	require.NoError(t, store.SaveDraft(ctx, newDraft))
	require.NoError(t, store.SaveDraft(ctx, otherUser))

	// Без фильтра: все, от новых к старым
	all, err := store.ListDrafts(ctx, storage.DraftFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "essay-2", all[0].EssayID)
	assert.Equal(t, "essay-3", all[1].EssayID)
	assert.Equal(t, "essay-1", all[2].EssayID)

	// Фильтр по владельцу
	alices, err := store.ListDrafts(ctx, storage.DraftFilter{UserID: "alice"})
	require.NoError(t, err)
	assert.Len(t, alices, 2)

	// Фильтр по статусу синхронизации
	synced := true
	syncedDrafts, err := store.ListDrafts(ctx, storage.DraftFilter{Synced: &synced})
	require.NoError(t, err)
	require.Len(t, syncedDrafts, 1)
	assert.Equal(t, "essay-3", syncedDrafts[0].EssayID)

	// Limit обрезает результат после сортировки
	limited, err := store.ListDrafts(ctx, storage.DraftFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "essay-2", limited[0].EssayID)
}

func TestDeleteDraft(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveDraft(ctx, createTestDraft("essay-1", "u", "text", 1000)))
	require.NoError(t, store.DeleteDraft(ctx, "essay-1"))

	_, err := store.GetDraft(ctx, "essay-1")
	assert.ErrorIs(t, err, storage.ErrDraftNotFound)

	// Удаление отсутствующего черновика идемпотентно
	assert.NoError(t, store.DeleteDraft(ctx, "essay-1"))
}

func TestMarkDraftSynced(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SaveDraft(ctx, createTestDraft("essay-1", "u", "text", 1000)))

	syncedAt := time.Now().Truncate(time.Millisecond)
	require.NoError(t, store.MarkDraftSynced(ctx, "essay-1", syncedAt))

	got, err := store.GetDraft(ctx, "essay-1")
	require.NoError(t, err)
	assert.True(t, got.Synced)
	require.NotNil(t, got.SyncedAt)
	assert.True(t, got.SyncedAt.Equal(syncedAt))

	// Отметка отсутствующего черновика возвращает ErrDraftNotFound
	err = store.MarkDraftSynced(ctx, "missing", syncedAt)
	assert.ErrorIs(t, err, storage.ErrDraftNotFound)
}

func TestClosedStorage(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "closed_test.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.GetDraft(ctx, "essay-1")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = store.SaveDraft(ctx, createTestDraft("essay-1", "u", "text", 1000))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	// Повторное закрытие безопасно
	assert.NoError(t, store.Close())
}
