package syncer

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen indicates that uploads are suspended after repeated failures
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerState состояние circuit breaker
type BreakerState string

const (
	// BreakerClosed запросы проходят свободно
	BreakerClosed BreakerState = "closed"
	// BreakerOpen запросы блокируются до истечения таймаута остывания
	BreakerOpen BreakerState = "open"
	// BreakerHalfOpen пропускается один пробный запрос
	BreakerHalfOpen BreakerState = "half-open"
)

// Breaker отключает загрузки после серии подряд идущих неудач.
// После таймаута остывания пропускает ровно один пробный запрос:
// его успех закрывает breaker, неудача открывает заново.
type Breaker struct {
	nowFn     func() time.Time
	openedAt  time.Time
	state     BreakerState
	threshold int
	failures  int
	cooldown  time.Duration
	probing   bool
	mu        sync.Mutex
}

// NewBreaker creates a closed breaker that opens after threshold
// consecutive failures and cools down for the given duration.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		state:     BreakerClosed,
		threshold: threshold,
		cooldown:  cooldown,
		nowFn:     time.Now,
	}
}

// Allow reports whether a request may proceed right now.
// В открытом состоянии после остывания переводит breaker в half-open
// и пропускает единственный пробный запрос.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if b.nowFn().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = BreakerHalfOpen
		b.probing = true
		return true
	case BreakerHalfOpen:
		// Пока пробный запрос в полёте, остальные ждут его исхода
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return false
}

// RecordSuccess closes the breaker and clears the failure streak
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = BreakerClosed
	b.failures = 0
	b.probing = false
}

// RecordFailure counts a failure, opening the breaker at the threshold.
// Неудача пробного запроса открывает breaker заново на полный таймаут.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.state = BreakerOpen
		b.openedAt = b.nowFn()
		b.probing = false
		return
	}

	b.failures++
	if b.failures >= b.threshold {
		b.state = BreakerOpen
		b.openedAt = b.nowFn()
	}
}

// Reset forces the breaker back to the closed state
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = BreakerClosed
	b.failures = 0
	b.probing = false
	b.openedAt = time.Time{}
}

// State returns the current breaker state
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
