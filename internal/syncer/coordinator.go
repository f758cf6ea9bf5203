// Package syncer coordinates uploads of local drafts to the remote
// document store.
//
// Координатор повторяет неудачные загрузки с экспоненциальным backoff,
// отключается через circuit breaker когда хранилище стабильно
// недоступно, режет крупные документы на чанки и гонит пакеты
// черновиков пачками с паузами. Очередь фоновой синхронизации
// дедуплицирует черновики по essayId.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sethvargo/go-retry"

	"github.com/essaykeeper/essaykeeper/internal/config"
	"github.com/essaykeeper/essaykeeper/internal/events"
	"github.com/essaykeeper/essaykeeper/internal/models"
	"github.com/essaykeeper/essaykeeper/internal/remote"
	"github.com/essaykeeper/essaykeeper/internal/storage"
	"github.com/essaykeeper/essaykeeper/pkg/api"
)

// SyncResult итог успешной загрузки одного черновика
type SyncResult struct {
	EssayID    string
	Version    int64
	ChunkCount int
	Attempts   int
	Latency    time.Duration
	Chunked    bool
}

// BatchError ошибка одного элемента пакетной синхронизации
type BatchError struct {
	Err     error
	EssayID string
}

// BatchResult итог пакетной синхронизации: элементы изолированы,
// неудача одного не прерывает остальные
type BatchResult struct {
	Errors []BatchError
	Synced int
	Failed int
}

// Coordinator управляет загрузкой черновиков в удалённое хранилище
type Coordinator struct {
	client  remote.ClientAPI
	session *remote.Session
	drafts  storage.DraftStorage
	breaker *Breaker
	logger  *slog.Logger
	nowFn   func() time.Time
	stats   stats
	bus     events.Bus[Event]
	cfg     config.Sync

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	queue    []*models.Draft
	queued   map[string]int
	draining bool
	closed   bool
}

// NewCoordinator creates a sync coordinator. Клиент может быть nil:
// тогда все операции возвращают ErrNotInitialized, что позволяет
// собирать приложение в офлайн-режиме.
func NewCoordinator(
	client remote.ClientAPI,
	session *remote.Session,
	draftStorage storage.DraftStorage,
	cfg config.Sync,
	logger *slog.Logger,
) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		client:  client,
		session: session,
		drafts:  draftStorage,
		breaker: NewBreaker(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerTimeout),
		logger:  logger,
		nowFn:   time.Now,
		cfg:     cfg,
		baseCtx: ctx,
		cancel:  cancel,
		queued:  make(map[string]int),
	}
}

// Subscribe registers a handler for coordinator events, returning a
// cancel function
func (c *Coordinator) Subscribe(fn func(Event)) func() {
	return c.bus.Subscribe(fn)
}

// newBackoff собирает стратегию повторов: экспонента от BaseDelay,
// джиттер ±20%, потолок MaxDelay, не больше MaxRetries повторов
func (c *Coordinator) newBackoff() retry.Backoff {
	b := retry.NewExponential(c.cfg.BaseDelay)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithCappedDuration(c.cfg.MaxDelay, b)
	return retry.WithMaxRetries(uint64(c.cfg.MaxRetries), b)
}

// SyncOne uploads a single draft, retrying transient failures.
// Возвращает ErrNotInitialized без клиента, ErrNotAuthenticated или
// ErrTokenExpired без действующей сессии и ErrCircuitOpen когда breaker
// открыт. Успех отмечает черновик синхронизированным в локальном
// хранилище.
func (c *Coordinator) SyncOne(ctx context.Context, draft *models.Draft) (*SyncResult, error) {
	if draft == nil || draft.EssayID == "" {
		return nil, errors.New("draft with essay id is required")
	}
	if c.client == nil {
		return nil, remote.ErrNotInitialized
	}

	token, err := c.session.Token()
	if err != nil {
		return nil, fmt.Errorf("sync rejected: %w", err)
	}

	if !c.breaker.Allow() {
		return nil, ErrCircuitOpen
	}

	start := c.nowFn()
	attempts := 0

	err = retry.Do(ctx, c.newBackoff(), func(ctx context.Context) error {
		attempts++

		// У каждой попытки собственный дедлайн
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		uploadErr := c.upload(attemptCtx, token, draft)
		if uploadErr == nil {
			return nil
		}
		c.logger.Debug("Upload attempt failed",
			"essay_id", draft.EssayID,
			"attempt", attempts,
			"error", uploadErr)
		if remote.IsRetryable(uploadErr) {
			return retry.RetryableError(uploadErr)
		}
		return uploadErr
	})

	latency := c.nowFn().Sub(start)
	c.stats.record(latency, attempts, err == nil)

	if err != nil {
		c.breaker.RecordFailure()
		wrapped := fmt.Errorf("failed to sync draft %q: %w", draft.EssayID, err)
		c.bus.Publish(ErrorEvent{EssayID: draft.EssayID, Op: "sync", Err: wrapped})
		return nil, wrapped
	}
	c.breaker.RecordSuccess()

	// Потеря отметки не фатальна: черновик уже на сервере, а повторная
	// загрузка идемпотентна
	if markErr := c.drafts.MarkDraftSynced(ctx, draft.EssayID, c.nowFn()); markErr != nil {
		c.logger.Warn("Failed to mark draft synced", "essay_id", draft.EssayID, "error", markErr)
	}

	result := &SyncResult{
		EssayID:  draft.EssayID,
		Version:  draft.Version,
		Attempts: attempts,
		Latency:  latency,
	}
	if len(draft.Content) > c.cfg.ChunkSize {
		result.Chunked = true
		result.ChunkCount = len(splitChunks(draft.Content, c.cfg.ChunkSize))
	}

	c.logger.Debug("Draft synced",
		"essay_id", draft.EssayID,
		"version", draft.Version,
		"attempts", attempts,
		"chunked", result.Chunked)
	c.bus.Publish(SyncEvent{
		EssayID: draft.EssayID,
		Version: draft.Version,
		Latency: latency,
		Chunked: result.Chunked,
	})

	return result, nil
}

// upload отправляет документ целиком либо метаданные плюс чанки
func (c *Coordinator) upload(ctx context.Context, token string, draft *models.Draft) error {
	doc := api.DraftDocument{
		UserID:    draft.UserID,
		EssayID:   draft.EssayID,
		Timestamp: draft.Timestamp,
		Version:   draft.Version,
		WordCount: draft.WordCount,
	}

	if len(draft.Content) <= c.cfg.ChunkSize {
		doc.Content = draft.Content
		return c.client.SaveDocument(ctx, token, doc)
	}

	chunks := splitChunks(draft.Content, c.cfg.ChunkSize)
	doc.Chunked = true
	doc.ChunkCount = len(chunks)

	// Сначала метаданные: читатель по Chunked=true знает, что контент
	// придёт отдельными записями
	if err := c.client.SaveDocument(ctx, token, doc); err != nil {
		return err
	}

	for i, chunk := range chunks {
		err := c.client.SaveChunk(ctx, token, api.DraftChunk{
			EssayID: draft.EssayID,
			Content: chunk,
			Index:   i,
			Count:   len(chunks),
		})
		if err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	return nil
}

// SyncBatch uploads drafts in sub-batches of BatchSize, pausing
// BatchPause between sub-batches. Элементы независимы: ошибки
// собираются в результат, а не прерывают пакет.
func (c *Coordinator) SyncBatch(ctx context.Context, drafts []*models.Draft) (*BatchResult, error) {
	if c.client == nil {
		return nil, remote.ErrNotInitialized
	}

	result := &BatchResult{}
	var mu sync.Mutex

	for offset := 0; offset < len(drafts); offset += c.cfg.BatchSize {
		end := offset + c.cfg.BatchSize
		if end > len(drafts) {
			end = len(drafts)
		}

		var wg sync.WaitGroup
		for _, draft := range drafts[offset:end] {
			wg.Add(1)
			go func(d *models.Draft) {
				defer wg.Done()

				_, err := c.SyncOne(ctx, d)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Failed++
					result.Errors = append(result.Errors, BatchError{EssayID: d.EssayID, Err: err})
					return
				}
				result.Synced++
			}(draft)
		}
		wg.Wait()

		// Пауза между под-пакетами, чтобы не заливать сервер
		if end < len(drafts) {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(c.cfg.BatchPause):
			}
		}
	}

	return result, nil
}

// SyncAll uploads every unsynced draft from local storage in batches
func (c *Coordinator) SyncAll(ctx context.Context) (*BatchResult, error) {
	if c.client == nil {
		return nil, remote.ErrNotInitialized
	}

	synced := false
	drafts, err := c.drafts.ListDrafts(ctx, storage.DraftFilter{Synced: &synced})
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced drafts: %w", err)
	}
	return c.SyncBatch(ctx, drafts)
}

// QueueSync schedules a draft for background upload.
// Черновик с тем же essayId замещает уже стоящий в очереди: загружать
// устаревшую версию нет смысла. Первый элемент запускает фоновый цикл.
func (c *Coordinator) QueueSync(draft *models.Draft) error {
	if draft == nil || draft.EssayID == "" {
		return errors.New("draft with essay id is required")
	}
	if c.client == nil {
		return remote.ErrNotInitialized
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("coordinator is closed")
	}

	if idx, ok := c.queued[draft.EssayID]; ok {
		c.queue[idx] = draft
		depth := len(c.queue)
		c.mu.Unlock()
		c.bus.Publish(QueuedEvent{EssayID: draft.EssayID, Depth: depth})
		return nil
	}

	c.queue = append(c.queue, draft)
	c.queued[draft.EssayID] = len(c.queue) - 1
	depth := len(c.queue)

	startDrain := !c.draining
	if startDrain {
		c.draining = true
		c.wg.Add(1)
	}
	c.mu.Unlock()

	c.bus.Publish(QueuedEvent{EssayID: draft.EssayID, Depth: depth})

	if startDrain {
		go c.drain()
	}
	return nil
}

// drain выгружает очередь пакетами через SyncBatch, чтобы фоновая
// синхронизация шла с теми же под-пакетами и паузами, что и явная;
// пришедшие во время работы черновики обрабатываются тем же циклом
func (c *Coordinator) drain() {
	defer c.wg.Done()

	for {
		c.mu.Lock()
		if len(c.queue) == 0 || c.baseCtx.Err() != nil {
			c.draining = false
			c.mu.Unlock()
			return
		}

		batch := c.queue
		c.queue = nil
		c.queued = make(map[string]int)
		c.mu.Unlock()

		for i, draft := range batch {
			c.bus.Publish(DequeuedEvent{EssayID: draft.EssayID, Remaining: len(batch) - i - 1})
		}

		result, err := c.SyncBatch(c.baseCtx, batch)
		if err != nil {
			// Отмена контекста: недогруженный остаток очереди пропадает
			// вместе с координатором
			c.logger.Warn("Background sync interrupted", "error", err)
			continue
		}
		if result.Failed > 0 {
			// Ошибки по элементам уже опубликованы из SyncOne
			c.logger.Warn("Background sync finished with failures",
				"synced", result.Synced,
				"failed", result.Failed)
		}
	}
}

// QueueLen returns the number of drafts waiting for background upload
func (c *Coordinator) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Wait blocks until the background queue is fully drained.
// Предназначен для завершения работы и тестов.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// ResetCircuitBreaker переводит breaker в закрытое состояние вручную
func (c *Coordinator) ResetCircuitBreaker() {
	c.breaker.Reset()
	c.logger.Info("Circuit breaker reset")
}

// BreakerState returns the current circuit breaker state
func (c *Coordinator) BreakerState() BreakerState {
	return c.breaker.State()
}

// Metrics returns a snapshot of the sync counters
func (c *Coordinator) Metrics() MetricsSnapshot {
	return c.stats.snapshot()
}

// Close stops the background queue. Уже идущая загрузка получает отмену
// контекста; очередь после Close не принимает новые черновики.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// splitChunks режет контент на куски не длиннее size байт, отводя
// границу назад до начала руны: чанки идут по сети как JSON-строки,
// где разорванная UTF-8 последовательность не переживает кодирование
func splitChunks(content string, size int) []string {
	var chunks []string
	for len(content) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		if cut == 0 {
			// Байты без начала руны: контент не UTF-8, режем как есть
			cut = size
		}
		chunks = append(chunks, content[:cut])
		content = content[cut:]
	}
	return append(chunks, content)
}
