package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essaykeeper/essaykeeper/internal/autosave"
	"github.com/essaykeeper/essaykeeper/internal/config"
	"github.com/essaykeeper/essaykeeper/internal/delta"
	"github.com/essaykeeper/essaykeeper/internal/storage"
	"github.com/essaykeeper/essaykeeper/internal/storage/boltdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// testConfig конфигурация без троттлинга: удобна для большинства тестов
func testConfig() config.Snapshot {
	return config.Snapshot{
		SnapshotInterval:     0,
		MinEditDistance:      0,
		MaxSnapshotsPerEssay: 50,
		UndoStackSize:        50,
	}
}

func newTestStorage(t *testing.T) *boltdb.Storage {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "snapshot_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func newTestManager(t *testing.T, cfg config.Snapshot) *Manager {
	t.Helper()
	return NewManager(newTestStorage(t), cfg, testLogger())
}

// mustCreate создает мануальный снапшот и требует, чтобы он не был отброшен
func mustCreate(t *testing.T, m *Manager, essayID, content string) {
	t.Helper()

	snap, err := m.CreateSnapshot(context.Background(), essayID, content, CreateOptions{Manual: true})
	require.NoError(t, err)
	require.NotNil(t, snap)
}

func TestCreateSnapshot_Validation(t *testing.T) {
	m := newTestManager(t, testConfig())

	_, err := m.CreateSnapshot(context.Background(), "", "content", CreateOptions{})
	assert.ErrorIs(t, err, ErrEmptyEssayID)
}

func TestCreateSnapshot_FirstIsFull(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, testConfig())

	snap, err := m.CreateSnapshot(ctx, "essay-1", "hello world", CreateOptions{Manual: true, UserID: "user-123"})
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, delta.TypeFull, snap.Delta.Type)
	assert.Equal(t, "hello world", snap.Content)
	assert.Equal(t, int64(1), snap.Seq)
	assert.Equal(t, 2, snap.WordCount)
	assert.Equal(t, "user-123", snap.UserID)

	// Второй снапшот уже дельта относительно первого
	snap, err = m.CreateSnapshot(ctx, "essay-1", "hello world there", CreateOptions{Manual: true})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, delta.TypeDelta, snap.Delta.Type)
	assert.Equal(t, " there", snap.Delta.Added)
	assert.Equal(t, int64(2), snap.Seq)
}

func TestUndoRedo_Discipline(t *testing.T) {
	m := newTestManager(t, testConfig())

	mustCreate(t, m, "essay-1", "V1")
	mustCreate(t, m, "essay-1", "V2")
	mustCreate(t, m, "essay-1", "V3")

	// undo: V3 -> V2 -> V1 -> исчерпано
	snap, err := m.Undo("essay-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "V2", snap.Content)

	snap, err = m.Undo("essay-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "V1", snap.Content)

	snap, err = m.Undo("essay-1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	// redo: V1 -> V2 -> V3 -> исчерпано
	snap, err = m.Redo("essay-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "V2", snap.Content)

	snap, err = m.Redo("essay-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "V3", snap.Content)

	snap, err = m.Redo("essay-1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestRedoInvalidation(t *testing.T) {
	m := newTestManager(t, testConfig())

	mustCreate(t, m, "essay-1", "V1")
	mustCreate(t, m, "essay-1", "V2")

	snap, err := m.Undo("essay-1")
	require.NoError(t, err)
	require.NotNil(t, snap)

	// Новый снапшот очищает redo-стек
	mustCreate(t, m, "essay-1", "V3")

	snap, err = m.Redo("essay-1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestCreateSnapshot_IntervalThrottle(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SnapshotInterval = 30 * time.Second

	m := newTestManager(t, cfg)

	now := time.Unix(1700000000, 0)
	m.nowFn = func() time.Time { return now }

	// Первый автоснапшот проходит: истории ещё нет
	snap, err := m.CreateSnapshot(ctx, "essay-1", "the initial content", CreateOptions{})
	require.NoError(t, err)
	require.NotNil(t, snap)

	// Второй в пределах интервала отбрасывается молча
	now = now.Add(10 * time.Second)
	snap, err = m.CreateSnapshot(ctx, "essay-1", "the initial content plus a large change", CreateOptions{})
	require.NoError(t, err)
	assert.Nil(t, snap)

	// Мануальный чекпоинт обходит троттлинг
	snap, err = m.CreateSnapshot(ctx, "essay-1", "the initial content plus a large change", CreateOptions{Manual: true})
	require.NoError(t, err)
	assert.NotNil(t, snap)

	// После интервала автоснапшот снова проходит
	now = now.Add(31 * time.Second)
	snap, err = m.CreateSnapshot(ctx, "essay-1", "the content rewritten once more entirely", CreateOptions{})
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestCreateSnapshot_MinEditDistance(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.MinEditDistance = 10

	m := newTestManager(t, cfg)

	mustCreate(t, m, "essay-1", "hello world essay draft")

	// Изменение меньше 10 символов: автоснапшот отбрасывается
	snap, err := m.CreateSnapshot(ctx, "essay-1", "hello world essay draft!", CreateOptions{})
	require.NoError(t, err)
	assert.Nil(t, snap)

	// Ровно одна запись в истории
	list, err := m.ListSnapshots(ctx, "essay-1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Достаточно большое изменение проходит
	snap, err = m.CreateSnapshot(ctx, "essay-1", "hello world essay draft, now expanded", CreateOptions{})
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestBoundedHistory_FIFO(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.MaxSnapshotsPerEssay = 3

	m := newTestManager(t, cfg)

	var trims []TrimEvent
	cancel := m.Subscribe(func(ev Event) {
		if trim, ok := ev.(TrimEvent); ok {
			trims = append(trims, trim)
		}
	})
	defer cancel()

	for i := 0; i <= 3; i++ {
		mustCreate(t, m, "essay-1", fmt.Sprintf("V%d", i))
	}

	// Остаются три новейших, V0 вытеснен
	list, err := m.ListSnapshots(ctx, "essay-1", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "V3", list[0].Content)
	assert.Equal(t, "V1", list[2].Content)

	require.Len(t, trims, 1)
	assert.Equal(t, 1, trims[0].Evicted)
	assert.Equal(t, 3, trims[0].Kept)
}

func TestUndoStack_Bounded(t *testing.T) {
	cfg := testConfig()
	cfg.UndoStackSize = 2

	m := newTestManager(t, cfg)

	mustCreate(t, m, "essay-1", "V1")
	mustCreate(t, m, "essay-1", "V2")
	mustCreate(t, m, "essay-1", "V3")

	// В памяти только V2 и V3: один шаг назад и всё
	snap, err := m.Undo("essay-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "V2", snap.Content)

	snap, err = m.Undo("essay-1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestLoadSnapshots_Rehydration(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	m1 := NewManager(store, testConfig(), testLogger())
	for _, content := range []string{"V1", "V2", "V3"} {
		snap, err := m1.CreateSnapshot(ctx, "essay-1", content, CreateOptions{Manual: true})
		require.NoError(t, err)
		require.NotNil(t, snap)
	}

	// Новый менеджер поверх того же хранилища: стеки в памяти пусты
	m2 := NewManager(store, testConfig(), testLogger())
	snap, err := m2.Undo("essay-1")
	require.NoError(t, err)
	require.Nil(t, snap)

	loaded, err := m2.LoadSnapshots(ctx, "essay-1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded)

	// После регидрации undo работает как до перезагрузки
	snap, err = m2.Undo("essay-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "V2", snap.Content)

	// Счётчик Seq продолжается, а не начинается заново
	created, err := m2.CreateSnapshot(ctx, "essay-1", "V4", CreateOptions{Manual: true})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(4), created.Seq)
}

func TestDeleteSnapshot(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, testConfig())

	snap, err := m.CreateSnapshot(ctx, "essay-1", "V1", CreateOptions{Manual: true})
	require.NoError(t, err)
	require.NotNil(t, snap)

	require.NoError(t, m.DeleteSnapshot(ctx, snap.SnapshotID))

	_, err = m.GetSnapshot(ctx, snap.SnapshotID)
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	// Стек тоже очищен
	assert.Nil(t, m.Current("essay-1"))
}

func TestClearSnapshots(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, testConfig())

	mustCreate(t, m, "essay-1", "V1")
	mustCreate(t, m, "essay-1", "V2")

	removed, err := m.ClearSnapshots(ctx, "essay-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	list, err := m.ListSnapshots(ctx, "essay-1", 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	snap, err := m.Undo("essay-1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSyncBookkeeping(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, testConfig())

	mustCreate(t, m, "essay-1", "V1")
	mustCreate(t, m, "essay-1", "V2")

	unsynced, err := m.GetUnsynced(ctx, "essay-1")
	require.NoError(t, err)
	require.Len(t, unsynced, 2)

	require.NoError(t, m.MarkSynced(ctx, unsynced[0].SnapshotID))

	unsynced, err = m.GetUnsynced(ctx, "essay-1")
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)

	// QueueSync возвращает снапшот в очередь на загрузку
	snap := unsynced[0]
	require.NoError(t, m.MarkSynced(ctx, snap.SnapshotID))
	require.NoError(t, m.QueueSync(ctx, snap.SnapshotID))

	unsynced, err = m.GetUnsynced(ctx, "essay-1")
	require.NoError(t, err)
	assert.Len(t, unsynced, 1)
}

func TestEvents(t *testing.T) {
	m := newTestManager(t, testConfig())

	var kinds []EventKind
	cancel := m.Subscribe(func(ev Event) {
		kinds = append(kinds, ev.Kind())
	})
	defer cancel()

	mustCreate(t, m, "essay-1", "V1")
	mustCreate(t, m, "essay-1", "V2")

	_, err := m.Undo("essay-1")
	require.NoError(t, err)
	_, err = m.Redo("essay-1")
	require.NoError(t, err)

	assert.Equal(t, []EventKind{EventSnapshot, EventSnapshot, EventUndo, EventRedo}, kinds)
}

// TestEndToEnd проигрывает полный сценарий: автосохранение, чекпоинт,
// вторая версия и откат.
func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	drafts := autosave.NewManager(store, config.Autosave{DebounceDelay: time.Hour}, testLogger())
	defer drafts.Close()

	snapCfg := config.Snapshot{
		SnapshotInterval:     0,
		MinEditDistance:      5,
		MaxSnapshotsPerEssay: 50,
		UndoStackSize:        50,
	}
	snaps := NewManager(store, snapCfg, testLogger())

	// Сохраняем черновик и немедленно выталкиваем дебаунс
	p, err := drafts.Save(ctx, "e1", "hello world", nil)
	require.NoError(t, err)
	drafts.Flush()
	_, err = p.Wait(ctx)
	require.NoError(t, err)

	draft, err := drafts.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "hello world", draft.Content)
	assert.Equal(t, int64(1), draft.Version)
	assert.Equal(t, 2, draft.WordCount)
	assert.False(t, draft.Synced)

	// Мануальный чекпоинт текущего содержимого
	snap, err := snaps.CreateSnapshot(ctx, "e1", draft.Content, CreateOptions{Manual: true})
	require.NoError(t, err)
	require.NotNil(t, snap)

	list, err := snaps.ListSnapshots(ctx, "e1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Вторая версия: достаточно большое изменение для автоснапшота
	p, err = drafts.Save(ctx, "e1", "hello world there", nil)
	require.NoError(t, err)
	drafts.Flush()
	_, err = p.Wait(ctx)
	require.NoError(t, err)

	snap, err = snaps.CreateSnapshot(ctx, "e1", "hello world there", CreateOptions{})
	require.NoError(t, err)
	require.NotNil(t, snap)

	// Откат возвращает первую версию
	prev, err := snaps.Undo("e1")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "hello world", prev.Content)
}
