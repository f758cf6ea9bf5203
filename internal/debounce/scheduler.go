// Package debounce реализует отложенное выполнение задач с одной
// ожидающей задачей на ключ. Повторное планирование по тому же ключу
// отменяет предыдущую задачу и заменяет её новой (cancel-and-replace).
package debounce

import (
	"sync"
	"time"
)

// task одна запланированная задача
type task struct {
	timer *time.Timer
	fn    func()
}

// Scheduler owns at most one outstanding delayed task per key.
// A task runs exactly once: either when its timer fires, or when it is
// flushed; a cancelled or replaced task never runs.
type Scheduler struct {
	tasks  map[string]*task
	delay  time.Duration
	mu     sync.Mutex
	closed bool
}

// NewScheduler creates a scheduler with the given quiet period.
func NewScheduler(delay time.Duration) *Scheduler {
	return &Scheduler{
		tasks: make(map[string]*task),
		delay: delay,
	}
}

// Schedule arms the task for key, replacing any pending task for the same
// key. Returns true if a pending task was replaced.
func (s *Scheduler) Schedule(key string, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	replaced := false
	if prev, ok := s.tasks[key]; ok {
		// Отменяем предыдущий таймер; если он уже сработал,
		// задача сама удалила себя из map до запуска fn
		prev.timer.Stop()
		replaced = true
	}

	t := &task{fn: fn}
	t.timer = time.AfterFunc(s.delay, func() {
		s.fire(key, t)
	})
	s.tasks[key] = t

	return replaced
}

// fire выполняет задачу по срабатыванию таймера
func (s *Scheduler) fire(key string, t *task) {
	s.mu.Lock()
	cur, ok := s.tasks[key]
	if !ok || cur != t {
		// Задачу успели заменить или отменить между срабатыванием
		// таймера и взятием блокировки
		s.mu.Unlock()
		return
	}
	delete(s.tasks, key)
	s.mu.Unlock()

	t.fn()
}

// Cancel drops the pending task for key without running it.
// Returns true if a task was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	return true
}

// Flush runs the pending task for key immediately, bypassing the timer.
// Returns true if a task was pending and has been run.
func (s *Scheduler) Flush(key string) bool {
	s.mu.Lock()
	t, ok := s.tasks[key]
	if !ok {
		s.mu.Unlock()
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	s.mu.Unlock()

	t.fn()
	return true
}

// FlushAll runs all pending tasks immediately and returns how many ran.
func (s *Scheduler) FlushAll() int {
	s.mu.Lock()
	pending := make([]*task, 0, len(s.tasks))
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
		pending = append(pending, t)
	}
	s.mu.Unlock()

	for _, t := range pending {
		t.fn()
	}
	return len(pending)
}

// Pending returns the number of scheduled tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close cancels all pending tasks; further Schedule calls are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
}
