package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_StartsClosed(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	assert.Equal(t, BreakerClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, BreakerClosed, b.State())
	assert.True(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_SuccessResetsStreak(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()

	// Серия прервана: до порога снова три неудачи
	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Unix(1700000000, 0)
	b := NewBreaker(1, time.Minute)
	b.nowFn = func() time.Time { return now }

	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())

	// После остывания проходит ровно один пробный запрос
	now = now.Add(61 * time.Second)
	assert.True(t, b.Allow())
	assert.Equal(t, BreakerHalfOpen, b.State())
	assert.False(t, b.Allow())

	b.RecordSuccess()
	assert.Equal(t, BreakerClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_ProbeFailureReopens(t *testing.T) {
	now := time.Unix(1700000000, 0)
	b := NewBreaker(1, time.Minute)
	b.nowFn = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(61 * time.Second)
	assert.True(t, b.Allow())

	// Неудачная проба открывает breaker на полный таймаут заново
	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())

	now = now.Add(30 * time.Second)
	assert.False(t, b.Allow())

	now = now.Add(31 * time.Second)
	assert.True(t, b.Allow())
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker(1, time.Minute)

	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())

	b.Reset()
	assert.Equal(t, BreakerClosed, b.State())
	assert.True(t, b.Allow())
}
