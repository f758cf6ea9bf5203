package syncer

import "time"

// EventKind тип события координатора синхронизации
type EventKind string

const (
	// EventSync черновик успешно загружен в удалённое хранилище
	EventSync EventKind = "sync"
	// EventError загрузка окончательно не удалась
	EventError EventKind = "error"
	// EventQueued черновик поставлен в очередь фоновой синхронизации
	EventQueued EventKind = "queued"
	// EventDequeued черновик извлечён из очереди для загрузки
	EventDequeued EventKind = "dequeued"
)

// Event общий интерфейс событий координатора
type Event interface {
	Kind() EventKind
}

// SyncEvent публикуется после успешной загрузки черновика
type SyncEvent struct {
	EssayID string
	Version int64
	Latency time.Duration
	Chunked bool
}

func (SyncEvent) Kind() EventKind { return EventSync }

// ErrorEvent публикуется когда загрузка исчерпала повторы
type ErrorEvent struct {
	Err     error
	EssayID string
	Op      string
}

func (ErrorEvent) Kind() EventKind { return EventError }

// QueuedEvent публикуется при постановке черновика в очередь
type QueuedEvent struct {
	EssayID string
	Depth   int
}

func (QueuedEvent) Kind() EventKind { return EventQueued }

// DequeuedEvent публикуется когда фоновый цикл забирает черновик
type DequeuedEvent struct {
	EssayID   string
	Remaining int
}

func (DequeuedEvent) Kind() EventKind { return EventDequeued }
