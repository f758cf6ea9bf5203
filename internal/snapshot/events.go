package snapshot

import "github.com/essaykeeper/essaykeeper/internal/delta"

// EventKind identifies the kind of snapshot store event
type EventKind string

const (
	// EventSnapshot создан новый снапшот
	EventSnapshot EventKind = "snapshot"
	// EventUndo выполнен откат к предыдущему снапшоту
	EventUndo EventKind = "undo"
	// EventRedo выполнен возврат отменённого снапшота
	EventRedo EventKind = "redo"
	// EventError ошибка durable-хранилища
	EventError EventKind = "error"
	// EventTrim история усечена до предела, есть вытесненные снапшоты
	EventTrim EventKind = "trim"
)

// Event is the sum type of snapshot store notifications
type Event interface {
	Kind() EventKind
}

// SnapshotEvent is published after a snapshot is created
type SnapshotEvent struct {
	EssayID    string
	SnapshotID string
	DeltaType  delta.Type
	Timestamp  int64
	WordCount  int
}

func (SnapshotEvent) Kind() EventKind { return EventSnapshot }

// UndoEvent is published after a successful undo
type UndoEvent struct {
	EssayID    string
	SnapshotID string // SnapshotID снапшот, ставший текущим
}

func (UndoEvent) Kind() EventKind { return EventUndo }

// RedoEvent is published after a successful redo
type RedoEvent struct {
	EssayID    string
	SnapshotID string
}

func (RedoEvent) Kind() EventKind { return EventRedo }

// ErrorEvent is published when a storage operation fails
type ErrorEvent struct {
	Err     error
	EssayID string
	Op      string
}

func (ErrorEvent) Kind() EventKind { return EventError }

// TrimEvent is published when oldest snapshots are evicted from storage
type TrimEvent struct {
	EssayID string
	Evicted int
	Kept    int
}

func (TrimEvent) Kind() EventKind { return EventTrim }
