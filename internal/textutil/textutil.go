// Package textutil contains small helpers over draft content strings.
package textutil

import (
	"hash/fnv"
	"strings"
)

// HashContent returns the 32-bit FNV-1a hash of the content.
// Хэш не криптографический, используется только для обнаружения
// точных дубликатов при дедупликации сохранений.
func HashContent(content string) uint32 {
	h := fnv.New32a()
	// Write на fnv никогда не возвращает ошибку
	_, _ = h.Write([]byte(content))
	return h.Sum32()
}

// WordCount returns the number of whitespace-delimited tokens.
// Пустая строка и строка из одних пробелов дают 0.
func WordCount(content string) int {
	return len(strings.Fields(content))
}
