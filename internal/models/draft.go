package models

import "time"

// Draft представляет последнюю сохранённую версию черновика эссе.
// На каждый essayID существует ровно один Draft: новые сохранения
// перезаписывают его, увеличивая Version.
type Draft struct {
	SyncedAt    *time.Time        `json:"synced_at,omitempty"` // SyncedAt время последней успешной синхронизации
	Metadata    map[string]string `json:"metadata,omitempty"`  // Metadata произвольные поля от редактора
	EssayID     string            `json:"essay_id"`            // EssayID уникальный идентификатор документа
	UserID      string            `json:"user_id"`             // UserID владелец черновика
	Content     string            `json:"content"`             // Content текущий текст целиком
	Timestamp   int64             `json:"timestamp"`           // Timestamp время записи (unix миллисекунды)
	Version     int64             `json:"version"`             // Version монотонный счётчик записей, с 1
	ContentHash uint32            `json:"content_hash"`        // ContentHash FNV-1a хэш Content
	WordCount   int               `json:"word_count"`          // WordCount количество слов в Content
	Synced      bool              `json:"synced"`              // Synced есть ли актуальная копия на сервере
}
