package models

import "github.com/essaykeeper/essaykeeper/internal/delta"

// Snapshot представляет одну точку в истории версий документа.
// Content хранится целиком для мгновенного undo/redo, Delta описывает
// изменение относительно предыдущего снапшота (или весь текст, если
// предшественника не было).
type Snapshot struct {
	SnapshotID string      `json:"snapshot_id"` // SnapshotID глобально уникальный идентификатор (UUID)
	EssayID    string      `json:"essay_id"`    // EssayID документ, к которому относится снапшот
	UserID     string      `json:"user_id"`     // UserID владелец документа
	Content    string      `json:"content"`     // Content полный текст на момент снапшота
	Delta      delta.Delta `json:"delta"`       // Delta изменение относительно предыдущего снапшота
	Seq        int64       `json:"seq"`         // Seq порядковый номер внутри essayID, определяет порядок истории
	Timestamp  int64       `json:"timestamp"`   // Timestamp время создания (unix миллисекунды)
	WordCount  int         `json:"word_count"`  // WordCount количество слов в Content
	Synced     bool        `json:"synced"`      // Synced синхронизирован ли снапшот с сервером
	Manual     bool        `json:"manual"`      // Manual создан ли снапшот явным чекпоинтом пользователя
}
