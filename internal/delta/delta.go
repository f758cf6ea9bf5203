// Package delta реализует простое префикс/суффикс сжатие изменений между
// двумя версиями текста. Алгоритм линейный и не минимальный: он находит
// общий префикс и общий суффикс и сохраняет только изменённую середину.
// Для инкрементального набора текста этого достаточно; для перестановок
// больших блоков дельта может быть больше необходимой. Формат дельт
// зафиксирован сохранённой историей, менять алгоритм нельзя.
package delta

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Type определяет вид дельты
type Type string

const (
	// TypeFull дельта содержит полный текст (нет предшественника)
	TypeFull Type = "full"
	// TypeDelta дельта описывает изменение относительно предыдущего текста
	TypeDelta Type = "delta"
)

// ErrInvalidDelta indicates that a delta does not apply to the given base
var ErrInvalidDelta = errors.New("delta does not apply to base content")

// Delta describes the difference between two content strings
type Delta struct {
	Type    Type   `json:"type"`
	Content string `json:"content,omitempty"` // Content полный текст для TypeFull
	Removed string `json:"removed,omitempty"` // Removed удалённая середина старого текста
	Added   string `json:"added,omitempty"`   // Added добавленная середина нового текста
	Prefix  int    `json:"prefix"`            // Prefix длина общего префикса
	Suffix  int    `json:"suffix"`            // Suffix длина общего суффикса
}

// Full returns a delta carrying the complete content, used when a snapshot
// has no predecessor.
func Full(content string) Delta {
	return Delta{Type: TypeFull, Content: content}
}

// Between computes the delta from old to new content.
// Находим самый длинный общий префикс, затем самый длинный общий суффикс
// оставшихся областей; середина сохраняется как removed/added.
func Between(oldContent, newContent string) Delta {
	// Общий префикс
	maxPrefix := len(oldContent)
	if len(newContent) < maxPrefix {
		maxPrefix = len(newContent)
	}
	p := 0
	for p < maxPrefix && oldContent[p] == newContent[p] {
		p++
	}
	// Граница не должна разрывать UTF-8 последовательность: removed и
	// added хранятся в JSON, где невалидные байты не переживают запись
	for p > 0 && ((p < len(oldContent) && !utf8.RuneStart(oldContent[p])) ||
		(p < len(newContent) && !utf8.RuneStart(newContent[p]))) {
		p--
	}

	// Общий суффикс оставшихся областей (не пересекается с префиксом)
	maxSuffix := len(oldContent) - p
	if len(newContent)-p < maxSuffix {
		maxSuffix = len(newContent) - p
	}
	s := 0
	for s < maxSuffix && oldContent[len(oldContent)-1-s] == newContent[len(newContent)-1-s] {
		s++
	}
	for s > 0 && (!utf8.RuneStart(oldContent[len(oldContent)-s]) ||
		!utf8.RuneStart(newContent[len(newContent)-s])) {
		s--
	}

	return Delta{
		Type:    TypeDelta,
		Prefix:  p,
		Suffix:  s,
		Removed: oldContent[p : len(oldContent)-s],
		Added:   newContent[p : len(newContent)-s],
	}
}

// Apply reconstructs the new content from the base content and a delta.
// Для любых строк a, b выполняется Apply(a, Between(a, b)) == b.
func Apply(base string, d Delta) (string, error) {
	switch d.Type {
	case TypeFull:
		return d.Content, nil
	case TypeDelta:
		// Проверяем, что дельта согласована с base
		if d.Prefix+d.Suffix+len(d.Removed) != len(base) {
			return "", fmt.Errorf("%w: base length %d, delta expects %d",
				ErrInvalidDelta, len(base), d.Prefix+d.Suffix+len(d.Removed))
		}
		if base[d.Prefix:len(base)-d.Suffix] != d.Removed {
			return "", ErrInvalidDelta
		}
		return base[:d.Prefix] + d.Added + base[len(base)-d.Suffix:], nil
	default:
		return "", fmt.Errorf("unknown delta type %q", d.Type)
	}
}

// Size returns the number of changed characters the delta carries.
// Используется как мера значимости изменения (minEditDistance).
func (d Delta) Size() int {
	if d.Type == TypeFull {
		return len(d.Content)
	}
	return len(d.Added) + len(d.Removed)
}
