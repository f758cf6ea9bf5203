// Package events provides a minimal typed observer list.
//
// Каждый компонент определяет собственный enum видов событий и структуры
// полезной нагрузки, а Bus отвечает только за подписку и доставку.
// События доставляются синхронно в горутине издателя: обработчики должны
// быть быстрыми и не блокировать.
package events

import "sync"

// Bus is an observer list for events of type E.
// Нулевое значение готово к использованию.
type Bus[E any] struct {
	handlers map[int]func(E)
	mu       sync.RWMutex
	nextID   int
}

// Subscribe registers a handler and returns a cancel function that
// removes it. Cancel is idempotent.
func (b *Bus[E]) Subscribe(fn func(E)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[int]func(E))
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

// Publish delivers the event to all subscribed handlers synchronously.
func (b *Bus[E]) Publish(ev E) {
	b.mu.RLock()
	// Копируем срез обработчиков, чтобы обработчик мог отписаться
	// (или подписать другого) не взяв дедлок
	handlers := make([]func(E), 0, len(b.handlers))
	for _, fn := range b.handlers {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus[E]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
