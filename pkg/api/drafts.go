// Package api contains the wire types for the remote document store.
package api

// DraftDocument представляет документ черновика в удалённом хранилище.
// При Chunked=true поле Content пусто, а текст загружается отдельными
// чанками DraftChunk в количестве ChunkCount.
type DraftDocument struct {
	UserID     string `json:"userId"`
	EssayID    string `json:"essayId"`
	Content    string `json:"content,omitempty"`
	Timestamp  int64  `json:"timestamp"`
	Version    int64  `json:"version"`
	WordCount  int    `json:"wordCount"`
	ChunkCount int    `json:"chunkCount,omitempty"`
	Chunked    bool   `json:"chunked,omitempty"`
}

// DraftChunk представляет один фрагмент контента при чанковой загрузке
type DraftChunk struct {
	EssayID string `json:"essayId"`
	Content string `json:"content"`
	Index   int    `json:"index"` // Index порядковый номер чанка, с нуля
	Count   int    `json:"count"` // Count общее количество чанков документа
}

// ErrorResponse представляет ответ сервера с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
