package autosave

import "time"

// EventKind identifies the kind of draft store event
type EventKind string

const (
	// EventSave фактическая (не дедуплицированная) запись черновика
	EventSave EventKind = "save"
	// EventLoad успешное чтение черновика
	EventLoad EventKind = "load"
	// EventError ошибка хранилища при записи или чтении
	EventError EventKind = "error"
	// EventSync черновик отмечен синхронизированным
	EventSync EventKind = "sync"
)

// Event is the sum type of draft store notifications
type Event interface {
	Kind() EventKind
}

// SaveEvent is published after a committed draft write
type SaveEvent struct {
	EssayID   string
	Timestamp int64
	Version   int64
	WordCount int
}

func (SaveEvent) Kind() EventKind { return EventSave }

// LoadEvent is published after a successful Get
type LoadEvent struct {
	EssayID string
	Version int64
}

func (LoadEvent) Kind() EventKind { return EventLoad }

// ErrorEvent is published when a storage operation fails.
// Ошибка дублируется и событием, и возвратом вызывающему: часть
// вызывающих работает в режиме fire-and-forget и видит только событие.
type ErrorEvent struct {
	Err     error
	EssayID string
	Op      string
}

func (ErrorEvent) Kind() EventKind { return EventError }

// SyncEvent is published when a draft is marked as synced
type SyncEvent struct {
	SyncedAt time.Time
	EssayID  string
}

func (SyncEvent) Kind() EventKind { return EventSync }
