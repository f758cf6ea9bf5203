// Package autosave implements the debounced, deduplicated persistence of
// the latest draft per essay.
//
// Быстрые повторные сохранения одного документа схлопываются в одну
// запись последнего содержимого; запись с неизменённым содержимым
// (по FNV-1a хэшу) пропускается без инкремента версии.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/essaykeeper/essaykeeper/internal/config"
	"github.com/essaykeeper/essaykeeper/internal/debounce"
	"github.com/essaykeeper/essaykeeper/internal/events"
	"github.com/essaykeeper/essaykeeper/internal/models"
	"github.com/essaykeeper/essaykeeper/internal/storage"
	"github.com/essaykeeper/essaykeeper/internal/textutil"
)

// ErrEmptyEssayID indicates that Save was called without an essay ID
var ErrEmptyEssayID = errors.New("essay id must not be empty")

// SaveResult describes the outcome of one pending save
type SaveResult struct {
	EssayID   string
	Timestamp int64
	Version   int64
	WordCount int
	// Skipped запись пропущена: содержимое не изменилось
	Skipped bool
	// Superseded вызов вытеснен более поздним Save того же документа
	// (или отменён Delete/Close); его содержимое не было записано
	Superseded bool
}

// saveOutcome результат, доставляемый ожидающему PendingSave
type saveOutcome struct {
	result *SaveResult
	err    error
}

// PendingSave resolves once the debounced write executes, is skipped as a
// duplicate, or is superseded by a later save of the same essay.
type PendingSave struct {
	ch   chan saveOutcome
	once sync.Once
}

func newPendingSave() *PendingSave {
	return &PendingSave{ch: make(chan saveOutcome, 1)}
}

// resolve доставляет результат ровно один раз
func (p *PendingSave) resolve(result *SaveResult, err error) {
	p.once.Do(func() {
		p.ch <- saveOutcome{result: result, err: err}
	})
}

// Wait blocks until the save resolves or the context is done.
func (p *PendingSave) Wait(ctx context.Context) (*SaveResult, error) {
	select {
	case out := <-p.ch:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Manager handles debounced draft persistence over a DraftStorage.
// Конкурентные сохранения разных документов независимы; сохранения
// одного документа внутри окна дебаунса схлопываются в последнее.
type Manager struct {
	storage   storage.DraftStorage
	scheduler *debounce.Scheduler
	logger    *slog.Logger
	nowFn     func() time.Time
	hashes    map[string]uint32
	pending   map[string]*PendingSave
	bus       events.Bus[Event]
	cfg       config.Autosave
	mu        sync.Mutex
	closed    bool
}

// NewManager creates a new autosave manager
func NewManager(draftStorage storage.DraftStorage, cfg config.Autosave, logger *slog.Logger) *Manager {
	return &Manager{
		storage:   draftStorage,
		scheduler: debounce.NewScheduler(cfg.DebounceDelay),
		logger:    logger,
		nowFn:     time.Now,
		hashes:    make(map[string]uint32),
		pending:   make(map[string]*PendingSave),
		cfg:       cfg,
	}
}

// Subscribe registers an event handler, returning a cancel function
func (m *Manager) Subscribe(fn func(Event)) func() {
	return m.bus.Subscribe(fn)
}

// Save schedules a debounced write of the draft content.
// Возвращённый PendingSave разрешается когда отложенная запись
// фактически выполнена (или пропущена как дубликат). Более ранние
// вызовы в том же окне разрешаются с Superseded=true, их содержимое
// отбрасывается.
func (m *Manager) Save(ctx context.Context, essayID, content string, metadata map[string]string) (*PendingSave, error) {
	if essayID == "" {
		return nil, ErrEmptyEssayID
	}

	p := newPendingSave()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, storage.ErrStorageClosed
	}
	if prev, ok := m.pending[essayID]; ok {
		// Более ранний вызов вытесняется: его содержимое отбрасывается
		prev.resolve(&SaveResult{EssayID: essayID, Superseded: true}, nil)
	}
	m.pending[essayID] = p
	m.mu.Unlock()

	// Таймер перевзводится: пишем содержимое последнего вызова
	m.scheduler.Schedule(essayID, func() {
		m.commit(essayID, content, metadata, p)
	})

	return p, nil
}

// commit выполняет фактическую запись по срабатыванию дебаунса
func (m *Manager) commit(essayID, content string, metadata map[string]string, p *PendingSave) {
	// Отложенная запись переживает контекст вызова Save
	ctx := context.Background()

	m.mu.Lock()
	if m.pending[essayID] == p {
		delete(m.pending, essayID)
	}
	m.mu.Unlock()

	hash := textutil.HashContent(content)

	// Берём предыдущую версию и хэш
	var prevVersion int64
	prevHash, hashCached := m.cachedHash(essayID)

	existing, err := m.storage.GetDraft(ctx, essayID)
	switch {
	case err == nil:
		prevVersion = existing.Version
		if !hashCached {
			prevHash, hashCached = existing.ContentHash, true
		}
	case errors.Is(err, storage.ErrDraftNotFound):
		// Первое сохранение документа
	default:
		m.fail(p, essayID, "save", err)
		return
	}

	// Дедупликация: идентичное содержимое не пишем и версию не трогаем
	if existing != nil && hashCached && prevHash == hash {
		m.logger.Debug("Skipping duplicate save", "essay_id", essayID, "version", prevVersion)
		p.resolve(&SaveResult{
			EssayID:   essayID,
			Version:   prevVersion,
			Timestamp: existing.Timestamp,
			WordCount: existing.WordCount,
			Skipped:   true,
		}, nil)
		return
	}

	now := m.nowFn()
	draft := &models.Draft{
		EssayID:     essayID,
		Content:     content,
		ContentHash: hash,
		Timestamp:   now.UnixMilli(),
		Version:     prevVersion + 1,
		WordCount:   textutil.WordCount(content),
		Metadata:    metadata,
	}
	if existing != nil {
		draft.UserID = existing.UserID
	}
	if owner, ok := metadata["user_id"]; ok {
		draft.UserID = owner
	}

	if err := m.storage.SaveDraft(ctx, draft); err != nil {
		// Кэш хэшей не обновляем: неудачная запись не должна
		// замаскировать следующую попытку как дубликат
		m.fail(p, essayID, "save", err)
		return
	}

	m.setCachedHash(essayID, hash)

	m.logger.Debug("Draft saved",
		"essay_id", essayID,
		"version", draft.Version,
		"word_count", draft.WordCount)

	m.bus.Publish(SaveEvent{
		EssayID:   essayID,
		Version:   draft.Version,
		Timestamp: draft.Timestamp,
		WordCount: draft.WordCount,
	})

	p.resolve(&SaveResult{
		EssayID:   essayID,
		Version:   draft.Version,
		Timestamp: draft.Timestamp,
		WordCount: draft.WordCount,
	}, nil)
}

// fail доставляет ошибку и вызывающему, и пассивным наблюдателям
func (m *Manager) fail(p *PendingSave, essayID, op string, err error) {
	wrapped := fmt.Errorf("failed to %s draft: %w", op, err)
	m.logger.Warn("Draft storage operation failed", "essay_id", essayID, "op", op, "error", err)
	m.bus.Publish(ErrorEvent{EssayID: essayID, Op: op, Err: wrapped})
	p.resolve(nil, wrapped)
}

func (m *Manager) cachedHash(essayID string) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[essayID]
	return h, ok
}

func (m *Manager) setCachedHash(essayID string, hash uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[essayID] = hash
}

// Get returns the stored draft for the essay.
// Returns storage.ErrDraftNotFound if no draft exists.
func (m *Manager) Get(ctx context.Context, essayID string) (*models.Draft, error) {
	if essayID == "" {
		return nil, ErrEmptyEssayID
	}

	draft, err := m.storage.GetDraft(ctx, essayID)
	if err != nil {
		if !errors.Is(err, storage.ErrDraftNotFound) {
			m.bus.Publish(ErrorEvent{EssayID: essayID, Op: "load", Err: err})
		}
		return nil, err
	}

	m.bus.Publish(LoadEvent{EssayID: essayID, Version: draft.Version})
	return draft, nil
}

// List returns drafts matching the filter, newest-first
func (m *Manager) List(ctx context.Context, filter storage.DraftFilter) ([]*models.Draft, error) {
	return m.storage.ListDrafts(ctx, filter)
}

// Delete removes the draft, cancelling any pending debounced write.
// Идемпотентна: удаление отсутствующего черновика не ошибка.
func (m *Manager) Delete(ctx context.Context, essayID string) error {
	if essayID == "" {
		return ErrEmptyEssayID
	}

	m.scheduler.Cancel(essayID)

	m.mu.Lock()
	if p, ok := m.pending[essayID]; ok {
		p.resolve(&SaveResult{EssayID: essayID, Superseded: true}, nil)
		delete(m.pending, essayID)
	}
	delete(m.hashes, essayID)
	m.mu.Unlock()

	if err := m.storage.DeleteDraft(ctx, essayID); err != nil {
		m.bus.Publish(ErrorEvent{EssayID: essayID, Op: "delete", Err: err})
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	return nil
}

// MarkSynced flags the draft as replicated to the remote store
func (m *Manager) MarkSynced(ctx context.Context, essayID string, syncedAt time.Time) error {
	if err := m.storage.MarkDraftSynced(ctx, essayID, syncedAt); err != nil {
		return fmt.Errorf("failed to mark draft synced: %w", err)
	}
	m.bus.Publish(SyncEvent{EssayID: essayID, SyncedAt: syncedAt})
	return nil
}

// Flush executes all pending debounced writes immediately, bypassing
// their timers. Возвращает число выполненных записей. Используется
// перед выгрузкой приложения и в тестах.
func (m *Manager) Flush() int {
	return m.scheduler.FlushAll()
}

// Close cancels all pending writes and stops the manager
func (m *Manager) Close() {
	m.scheduler.Close()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for essayID, p := range m.pending {
		p.resolve(&SaveResult{EssayID: essayID, Superseded: true}, nil)
		delete(m.pending, essayID)
	}
}
