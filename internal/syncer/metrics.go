package syncer

import (
	"fmt"
	"sync"
	"time"
)

// latencyWindow число последних загрузок, участвующих в средней задержке
const latencyWindow = 100

// MetricsSnapshot счётчики синхронизации на момент вызова Metrics
type MetricsSnapshot struct {
	// SuccessRate доля успешных загрузок, например "75.0%"
	SuccessRate string
	// Total общее число завершённых загрузок
	Total int64
	// Succeeded число успешных загрузок
	Succeeded int64
	// Failed число загрузок, исчерпавших повторы
	Failed int64
	// Retried суммарное число повторных попыток
	Retried int64
	// AvgLatency средняя задержка по последним загрузкам
	AvgLatency time.Duration
}

// stats накапливает счётчики под мьютексом; задержки хранятся кольцом
type stats struct {
	mu        sync.Mutex
	total     int64
	succeeded int64
	failed    int64
	retried   int64
	latencies [latencyWindow]time.Duration
	count     int
	next      int
}

// record учитывает завершённую загрузку: attempts это общее число
// попыток, повторы считаются сверх первой
func (s *stats) record(latency time.Duration, attempts int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if ok {
		s.succeeded++
	} else {
		s.failed++
	}
	if attempts > 1 {
		s.retried += int64(attempts - 1)
	}

	s.latencies[s.next] = latency
	s.next = (s.next + 1) % latencyWindow
	if s.count < latencyWindow {
		s.count++
	}
}

func (s *stats) snapshot() MetricsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := MetricsSnapshot{
		Total:       s.total,
		Succeeded:   s.succeeded,
		Failed:      s.failed,
		Retried:     s.retried,
		SuccessRate: "n/a",
	}

	if s.total > 0 {
		snap.SuccessRate = fmt.Sprintf("%.1f%%", float64(s.succeeded)/float64(s.total)*100)
	}
	if s.count > 0 {
		var sum time.Duration
		for i := 0; i < s.count; i++ {
			sum += s.latencies[i]
		}
		snap.AvgLatency = sum / time.Duration(s.count)
	}

	return snap
}
