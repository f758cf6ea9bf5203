// Package snapshot implements the bounded, delta-compressed version
// history with in-memory undo/redo stacks.
//
// История durable: каждый снапшот хранится в локальном хранилище и
// переживает перезагрузку. Стеки undo/redo живут в памяти ради
// мгновенного отклика и восстанавливаются из хранилища через
// LoadSnapshots. Вершина undo-стека всегда соответствует текущему
// содержимому документа.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/essaykeeper/essaykeeper/internal/config"
	"github.com/essaykeeper/essaykeeper/internal/delta"
	"github.com/essaykeeper/essaykeeper/internal/events"
	"github.com/essaykeeper/essaykeeper/internal/models"
	"github.com/essaykeeper/essaykeeper/internal/storage"
	"github.com/essaykeeper/essaykeeper/internal/textutil"
)

// Validation errors
var (
	// ErrEmptyEssayID indicates that an operation was called without an essay ID
	ErrEmptyEssayID = errors.New("essay id must not be empty")

	// ErrEmptySnapshotID indicates that an operation was called without a snapshot ID
	ErrEmptySnapshotID = errors.New("snapshot id must not be empty")
)

// CreateOptions управляет созданием снапшота
type CreateOptions struct {
	// UserID владелец документа, попадает в снапшот
	UserID string
	// Manual явный чекпоинт пользователя: обходит троттлинг по
	// интервалу и минимальному размеру изменения
	Manual bool
}

// stackState стеки undo/redo одного документа
type stackState struct {
	lastSnapshotAt time.Time
	undo           []*models.Snapshot
	redo           []*models.Snapshot
	nextSeq        int64
}

// Manager handles the snapshot history for all essays sharing one storage
type Manager struct {
	storage storage.SnapshotStorage
	logger  *slog.Logger
	nowFn   func() time.Time
	stacks  map[string]*stackState
	bus     events.Bus[Event]
	cfg     config.Snapshot
	mu      sync.Mutex
}

// NewManager creates a new snapshot manager
func NewManager(snapshotStorage storage.SnapshotStorage, cfg config.Snapshot, logger *slog.Logger) *Manager {
	return &Manager{
		storage: snapshotStorage,
		logger:  logger,
		nowFn:   time.Now,
		stacks:  make(map[string]*stackState),
		cfg:     cfg,
	}
}

// Subscribe registers an event handler, returning a cancel function
func (m *Manager) Subscribe(fn func(Event)) func() {
	return m.bus.Subscribe(fn)
}

// state возвращает состояние стеков документа, создавая пустое при
// первом обращении. Вызывать под m.mu.
func (m *Manager) state(essayID string) *stackState {
	st, ok := m.stacks[essayID]
	if !ok {
		st = &stackState{}
		m.stacks[essayID] = st
	}
	return st
}

// CreateSnapshot records a new point in the essay's history.
// Возвращает (nil, nil) когда снапшот не нужен: немануальный вызов
// раньше SnapshotInterval после предыдущего или с изменением меньше
// MinEditDistance. Новый снапшот инвалидирует redo-историю.
func (m *Manager) CreateSnapshot(ctx context.Context, essayID, content string, opts CreateOptions) (*models.Snapshot, error) {
	if essayID == "" {
		return nil, ErrEmptyEssayID
	}

	m.mu.Lock()
	st := m.state(essayID)
	now := m.nowFn()

	// Троттлинг по времени: только для автоматических снапшотов
	if !opts.Manual && !st.lastSnapshotAt.IsZero() && now.Sub(st.lastSnapshotAt) < m.cfg.SnapshotInterval {
		m.mu.Unlock()
		return nil, nil
	}

	// Дельта относительно текущей вершины undo-стека
	var d delta.Delta
	if len(st.undo) > 0 {
		d = delta.Between(st.undo[len(st.undo)-1].Content, content)
	} else {
		d = delta.Full(content)
	}

	// Троттлинг по размеру изменения
	if !opts.Manual && d.Size() < m.cfg.MinEditDistance {
		m.mu.Unlock()
		return nil, nil
	}

	snap := &models.Snapshot{
		SnapshotID: uuid.New().String(),
		EssayID:    essayID,
		UserID:     opts.UserID,
		Content:    content,
		Delta:      d,
		Seq:        st.nextSeq + 1,
		Timestamp:  now.UnixMilli(),
		WordCount:  textutil.WordCount(content),
		Manual:     opts.Manual,
	}

	// Держим блокировку через запись: bolt-транзакция синхронна, а
	// конкурентный CreateSnapshot того же документа не должен увидеть
	// стек между записью и обновлением
	if err := m.storage.SaveSnapshot(ctx, snap); err != nil {
		m.mu.Unlock()
		wrapped := fmt.Errorf("failed to save snapshot: %w", err)
		m.bus.Publish(ErrorEvent{EssayID: essayID, Op: "snapshot", Err: wrapped})
		return nil, wrapped
	}

	st.nextSeq = snap.Seq
	st.lastSnapshotAt = now
	st.undo = append(st.undo, snap)
	if len(st.undo) > m.cfg.UndoStackSize {
		// Вытесняем самое старое состояние из памяти; durable-копия
		// живёт до усечения истории
		st.undo = st.undo[1:]
	}
	// Новые правки инвалидируют redo-историю
	st.redo = nil

	// Усекаем durable-историю до предела (FIFO)
	evicted, err := m.storage.TrimSnapshots(ctx, essayID, m.cfg.MaxSnapshotsPerEssay)
	m.mu.Unlock()
	if err != nil {
		m.logger.Warn("Failed to trim snapshot history", "essay_id", essayID, "error", err)
		m.bus.Publish(ErrorEvent{EssayID: essayID, Op: "trim", Err: err})
	} else if evicted > 0 {
		m.logger.Debug("Trimmed snapshot history",
			"essay_id", essayID,
			"evicted", evicted,
			"kept", m.cfg.MaxSnapshotsPerEssay)
		m.bus.Publish(TrimEvent{EssayID: essayID, Evicted: evicted, Kept: m.cfg.MaxSnapshotsPerEssay})
	}

	m.bus.Publish(SnapshotEvent{
		EssayID:    essayID,
		SnapshotID: snap.SnapshotID,
		Timestamp:  snap.Timestamp,
		WordCount:  snap.WordCount,
		DeltaType:  snap.Delta.Type,
	})

	return snap, nil
}

// Undo steps back to the previous snapshot, returning it.
// Возвращает (nil, nil) когда отступать некуда: в undo-стеке меньше
// двух состояний. Работает только с памятью, без обращений к
// durable-хранилищу.
func (m *Manager) Undo(essayID string) (*models.Snapshot, error) {
	if essayID == "" {
		return nil, ErrEmptyEssayID
	}

	m.mu.Lock()
	st := m.state(essayID)
	if len(st.undo) < 2 {
		m.mu.Unlock()
		return nil, nil
	}

	// Текущее состояние уходит в redo, предыдущее становится текущим
	top := st.undo[len(st.undo)-1]
	st.undo = st.undo[:len(st.undo)-1]
	st.redo = append(st.redo, top)
	current := st.undo[len(st.undo)-1]
	m.mu.Unlock()

	m.bus.Publish(UndoEvent{EssayID: essayID, SnapshotID: current.SnapshotID})
	return current, nil
}

// Redo reapplies the most recently undone snapshot, returning it.
// Возвращает (nil, nil) при пустом redo-стеке.
func (m *Manager) Redo(essayID string) (*models.Snapshot, error) {
	if essayID == "" {
		return nil, ErrEmptyEssayID
	}

	m.mu.Lock()
	st := m.state(essayID)
	if len(st.redo) == 0 {
		m.mu.Unlock()
		return nil, nil
	}

	top := st.redo[len(st.redo)-1]
	st.redo = st.redo[:len(st.redo)-1]
	st.undo = append(st.undo, top)
	m.mu.Unlock()

	m.bus.Publish(RedoEvent{EssayID: essayID, SnapshotID: top.SnapshotID})
	return top, nil
}

// LoadSnapshots rehydrates the in-memory undo stack from durable storage.
// Используется после перезагрузки, когда стеки в памяти пусты.
// Возвращает число загруженных в стек снапшотов.
func (m *Manager) LoadSnapshots(ctx context.Context, essayID string) (int, error) {
	if essayID == "" {
		return 0, ErrEmptyEssayID
	}

	snapshots, err := m.storage.ListSnapshotsAsc(ctx, essayID)
	if err != nil {
		wrapped := fmt.Errorf("failed to load snapshots: %w", err)
		m.bus.Publish(ErrorEvent{EssayID: essayID, Op: "load", Err: wrapped})
		return 0, wrapped
	}

	// В стек попадают только последние UndoStackSize состояний
	if len(snapshots) > m.cfg.UndoStackSize {
		snapshots = snapshots[len(snapshots)-m.cfg.UndoStackSize:]
	}

	m.mu.Lock()
	st := m.state(essayID)
	st.undo = snapshots
	st.redo = nil
	st.nextSeq = 0
	st.lastSnapshotAt = time.Time{}
	if len(snapshots) > 0 {
		newest := snapshots[len(snapshots)-1]
		st.nextSeq = newest.Seq
		st.lastSnapshotAt = time.UnixMilli(newest.Timestamp)
	}
	m.mu.Unlock()

	m.logger.Debug("Rehydrated undo stack", "essay_id", essayID, "snapshots", len(snapshots))
	return len(snapshots), nil
}

// Current returns the snapshot at the top of the undo stack, nil if none
func (m *Manager) Current(essayID string) *models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(essayID)
	if len(st.undo) == 0 {
		return nil
	}
	return st.undo[len(st.undo)-1]
}

// ListSnapshots returns the essay's history, newest-first
func (m *Manager) ListSnapshots(ctx context.Context, essayID string, limit int) ([]*models.Snapshot, error) {
	if essayID == "" {
		return nil, ErrEmptyEssayID
	}
	return m.storage.ListSnapshots(ctx, essayID, limit)
}

// GetSnapshot returns one snapshot by its ID
func (m *Manager) GetSnapshot(ctx context.Context, snapshotID string) (*models.Snapshot, error) {
	if snapshotID == "" {
		return nil, ErrEmptySnapshotID
	}
	return m.storage.GetSnapshot(ctx, snapshotID)
}

// DeleteSnapshot removes one snapshot from storage and both stacks
func (m *Manager) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	if snapshotID == "" {
		return ErrEmptySnapshotID
	}

	if err := m.storage.DeleteSnapshot(ctx, snapshotID); err != nil {
		return err
	}

	// Держим стеки согласованными с durable-историей
	m.mu.Lock()
	for _, st := range m.stacks {
		st.undo = removeByID(st.undo, snapshotID)
		st.redo = removeByID(st.redo, snapshotID)
	}
	m.mu.Unlock()

	return nil
}

// ClearSnapshots drops the essay's entire history and in-memory stacks
func (m *Manager) ClearSnapshots(ctx context.Context, essayID string) (int, error) {
	if essayID == "" {
		return 0, ErrEmptyEssayID
	}

	removed, err := m.storage.ClearSnapshots(ctx, essayID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear snapshots: %w", err)
	}

	m.mu.Lock()
	delete(m.stacks, essayID)
	m.mu.Unlock()

	return removed, nil
}

// QueueSync flags a snapshot for (re-)upload by clearing its synced
// mark, so GetUnsynced returns it again
func (m *Manager) QueueSync(ctx context.Context, snapshotID string) error {
	if snapshotID == "" {
		return ErrEmptySnapshotID
	}

	snap, err := m.storage.GetSnapshot(ctx, snapshotID)
	if err != nil {
		return err
	}
	if !snap.Synced {
		return nil
	}

	snap.Synced = false
	if err := m.storage.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to queue snapshot for sync: %w", err)
	}

	m.mu.Lock()
	for _, st := range m.stacks {
		setSyncedByID(st.undo, snapshotID, false)
		setSyncedByID(st.redo, snapshotID, false)
	}
	m.mu.Unlock()

	return nil
}

// GetUnsynced returns the essay's snapshots pending remote upload
func (m *Manager) GetUnsynced(ctx context.Context, essayID string) ([]*models.Snapshot, error) {
	if essayID == "" {
		return nil, ErrEmptyEssayID
	}
	return m.storage.GetUnsyncedSnapshots(ctx, essayID)
}

// MarkSynced flags one snapshot as replicated, in storage and in the stacks
func (m *Manager) MarkSynced(ctx context.Context, snapshotID string) error {
	if snapshotID == "" {
		return ErrEmptySnapshotID
	}

	if err := m.storage.MarkSnapshotSynced(ctx, snapshotID); err != nil {
		return err
	}

	m.mu.Lock()
	for _, st := range m.stacks {
		setSyncedByID(st.undo, snapshotID, true)
		setSyncedByID(st.redo, snapshotID, true)
	}
	m.mu.Unlock()

	return nil
}

// removeByID удаляет снапшот из среза, сохраняя порядок
func removeByID(snapshots []*models.Snapshot, snapshotID string) []*models.Snapshot {
	for i, s := range snapshots {
		if s.SnapshotID == snapshotID {
			return append(snapshots[:i], snapshots[i+1:]...)
		}
	}
	return snapshots
}

func setSyncedByID(snapshots []*models.Snapshot, snapshotID string, synced bool) {
	for _, s := range snapshots {
		if s.SnapshotID == snapshotID {
			s.Synced = synced
		}
	}
}
