package boltdb

import (
	"context"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketDrafts    = []byte("drafts")
	bucketSnapshots = []byte("snapshots")
)

// Storage represents BoltDB storage implementation for the draft core
type Storage struct {
	db     *bbolt.DB
	mu     sync.RWMutex
	closed bool
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil || s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		// Бакет для последних версий черновиков
		if _, err := tx.CreateBucketIfNotExists(bucketDrafts); err != nil {
			return fmt.Errorf("failed to create drafts bucket: %w", err)
		}

		// Бакет для истории снапшотов
		if _, err := tx.CreateBucketIfNotExists(bucketSnapshots); err != nil {
			return fmt.Errorf("failed to create snapshots bucket: %w", err)
		}

		return nil
	})
}
