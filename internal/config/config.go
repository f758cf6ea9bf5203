// Package config holds the tunables for the draft persistence core.
// Конфигурация передаётся конструкторам явно: никакого глобального
// состояния, каждый менеджер получает свою секцию.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Autosave настройки дебаунса сохранений черновиков
type Autosave struct {
	// DebounceDelay тихий период перед фактической записью
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// Snapshot настройки истории версий
type Snapshot struct {
	// SnapshotInterval минимальный интервал между автоматическими снапшотами
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
	// MinEditDistance минимальное число изменённых символов для автоснапшота
	MinEditDistance int `yaml:"min_edit_distance"`
	// MaxSnapshotsPerEssay предел длины durable-истории на документ
	MaxSnapshotsPerEssay int `yaml:"max_snapshots_per_essay"`
	// UndoStackSize предел размера undo-стека в памяти
	UndoStackSize int `yaml:"undo_stack_size"`
}

// Sync настройки синхронизации с удалённым хранилищем
type Sync struct {
	// BaseDelay начальная задержка экспоненциального backoff
	BaseDelay time.Duration `yaml:"base_delay"`
	// MaxDelay верхняя граница задержки между повторами
	MaxDelay time.Duration `yaml:"max_delay"`
	// Timeout дедлайн одной попытки загрузки
	Timeout time.Duration `yaml:"timeout"`
	// BatchPause пауза между под-пакетами SyncBatch
	BatchPause time.Duration `yaml:"batch_pause"`
	// CircuitBreakerTimeout время остывания открытого circuit breaker
	CircuitBreakerTimeout time.Duration `yaml:"circuit_breaker_timeout"`
	// MaxRetries число повторов после первой неудачной попытки
	MaxRetries int `yaml:"max_retries"`
	// ChunkSize порог размера контента для разбиения на чанки
	ChunkSize int `yaml:"chunk_size"`
	// BatchSize размер под-пакета SyncBatch
	BatchSize int `yaml:"batch_size"`
	// CircuitBreakerThreshold число подряд идущих неудач до открытия breaker
	CircuitBreakerThreshold int `yaml:"circuit_breaker_threshold"`
}

// Config объединяет настройки всех трёх компонентов
type Config struct {
	Autosave Autosave `yaml:"autosave"`
	Snapshot Snapshot `yaml:"snapshot"`
	Sync     Sync     `yaml:"sync"`
}

// Default returns the configuration with all documented defaults.
func Default() Config {
	return Config{
		Autosave: Autosave{
			DebounceDelay: 2500 * time.Millisecond,
		},
		Snapshot: Snapshot{
			SnapshotInterval:     30 * time.Second,
			MinEditDistance:      10,
			MaxSnapshotsPerEssay: 50,
			UndoStackSize:        50,
		},
		Sync: Sync{
			MaxRetries:              3,
			BaseDelay:               1000 * time.Millisecond,
			MaxDelay:                8000 * time.Millisecond,
			Timeout:                 15000 * time.Millisecond,
			ChunkSize:               50000,
			BatchSize:               5,
			BatchPause:              1000 * time.Millisecond,
			CircuitBreakerThreshold: 3,
			CircuitBreakerTimeout:   60 * time.Second,
		},
	}
}

// Load reads a YAML file over the defaults. Отсутствующие в файле поля
// сохраняют значения по умолчанию.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Autosave.DebounceDelay <= 0 {
		return fmt.Errorf("autosave: debounce_delay must be positive, got %s", c.Autosave.DebounceDelay)
	}
	if c.Snapshot.MaxSnapshotsPerEssay < 1 {
		return fmt.Errorf("snapshot: max_snapshots_per_essay must be at least 1, got %d", c.Snapshot.MaxSnapshotsPerEssay)
	}
	if c.Snapshot.UndoStackSize < 2 {
		// Для undo нужно хранить минимум текущее и предыдущее состояние
		return fmt.Errorf("snapshot: undo_stack_size must be at least 2, got %d", c.Snapshot.UndoStackSize)
	}
	if c.Snapshot.MinEditDistance < 0 {
		return fmt.Errorf("snapshot: min_edit_distance must not be negative, got %d", c.Snapshot.MinEditDistance)
	}
	if c.Sync.MaxRetries < 0 {
		return fmt.Errorf("sync: max_retries must not be negative, got %d", c.Sync.MaxRetries)
	}
	if c.Sync.BaseDelay <= 0 || c.Sync.MaxDelay < c.Sync.BaseDelay {
		return fmt.Errorf("sync: need 0 < base_delay <= max_delay, got %s / %s", c.Sync.BaseDelay, c.Sync.MaxDelay)
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("sync: timeout must be positive, got %s", c.Sync.Timeout)
	}
	if c.Sync.ChunkSize < 1 {
		return fmt.Errorf("sync: chunk_size must be at least 1, got %d", c.Sync.ChunkSize)
	}
	if c.Sync.BatchSize < 1 {
		return fmt.Errorf("sync: batch_size must be at least 1, got %d", c.Sync.BatchSize)
	}
	if c.Sync.CircuitBreakerThreshold < 1 {
		return fmt.Errorf("sync: circuit_breaker_threshold must be at least 1, got %d", c.Sync.CircuitBreakerThreshold)
	}
	return nil
}
