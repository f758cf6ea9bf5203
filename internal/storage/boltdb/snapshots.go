package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/essaykeeper/essaykeeper/internal/models"
	"github.com/essaykeeper/essaykeeper/internal/storage"
)

// SaveSnapshot stores or updates a snapshot
func (s *Storage) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	if err := s.guard(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}

		// Сохраняем по snapshotID
		if err := bucket.Put([]byte(snapshot.SnapshotID), data); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}

		return nil
	})
}

// GetSnapshot retrieves a snapshot by its ID
func (s *Storage) GetSnapshot(ctx context.Context, snapshotID string) (*models.Snapshot, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var snapshot *models.Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		data := bucket.Get([]byte(snapshotID))
		if data == nil {
			return storage.ErrSnapshotNotFound
		}

		snapshot = &models.Snapshot{}
		if err := json.Unmarshal(data, snapshot); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// collectByEssay собирает все снапшоты документа без сортировки
func (s *Storage) collectByEssay(essayID string) ([]*models.Snapshot, error) {
	var snapshots []*models.Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			snapshot := &models.Snapshot{}
			if err := json.Unmarshal(v, snapshot); err != nil {
				return fmt.Errorf("failed to unmarshal snapshot: %w", err)
			}

			if snapshot.EssayID == essayID {
				snapshots = append(snapshots, snapshot)
			}
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return snapshots, nil
}

// ListSnapshots returns snapshots for the essay, newest-first by Seq
func (s *Storage) ListSnapshots(ctx context.Context, essayID string, limit int) ([]*models.Snapshot, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	snapshots, err := s.collectByEssay(essayID)
	if err != nil {
		return nil, err
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Seq > snapshots[j].Seq
	})

	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}

	return snapshots, nil
}

// ListSnapshotsAsc returns all snapshots for the essay, oldest-first by Seq
func (s *Storage) ListSnapshotsAsc(ctx context.Context, essayID string) ([]*models.Snapshot, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	snapshots, err := s.collectByEssay(essayID)
	if err != nil {
		return nil, err
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Seq < snapshots[j].Seq
	})

	return snapshots, nil
}

// DeleteSnapshot removes a single snapshot
func (s *Storage) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	if err := s.guard(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		if bucket.Get([]byte(snapshotID)) == nil {
			return storage.ErrSnapshotNotFound
		}

		return bucket.Delete([]byte(snapshotID))
	})
}

// ClearSnapshots removes all snapshots for the essay, returning the count
func (s *Storage) ClearSnapshots(ctx context.Context, essayID string) (int, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}

	removed := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		// Сначала собираем ключи: удалять внутри ForEach нельзя
		var keys [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			snapshot := &models.Snapshot{}
			if err := json.Unmarshal(v, snapshot); err != nil {
				return fmt.Errorf("failed to unmarshal snapshot: %w", err)
			}
			if snapshot.EssayID == essayID {
				key := make([]byte, len(k))
				copy(key, k)
				keys = append(keys, key)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, key := range keys {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("failed to delete snapshot: %w", err)
			}
			removed++
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return removed, nil
}

// TrimSnapshots evicts oldest snapshots above max, returning how many
func (s *Storage) TrimSnapshots(ctx context.Context, essayID string, max int) (int, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}

	snapshots, err := s.ListSnapshotsAsc(ctx, essayID)
	if err != nil {
		return 0, err
	}

	excess := len(snapshots) - max
	if excess <= 0 {
		return 0, nil
	}

	// Вытесняем самые старые (FIFO)
	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		for _, snapshot := range snapshots[:excess] {
			if err := bucket.Delete([]byte(snapshot.SnapshotID)); err != nil {
				return fmt.Errorf("failed to evict snapshot: %w", err)
			}
		}
		return nil
	})

	if err != nil {
		return 0, err
	}

	return excess, nil
}

// GetUnsyncedSnapshots returns snapshots pending remote upload, oldest-first
func (s *Storage) GetUnsyncedSnapshots(ctx context.Context, essayID string) ([]*models.Snapshot, error) {
	snapshots, err := s.ListSnapshotsAsc(ctx, essayID)
	if err != nil {
		return nil, err
	}

	unsynced := make([]*models.Snapshot, 0, len(snapshots))
	for _, snapshot := range snapshots {
		if !snapshot.Synced {
			unsynced = append(unsynced, snapshot)
		}
	}

	return unsynced, nil
}

// MarkSnapshotSynced sets the synced flag on a snapshot
func (s *Storage) MarkSnapshotSynced(ctx context.Context, snapshotID string) error {
	if err := s.guard(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSnapshots)
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		data := bucket.Get([]byte(snapshotID))
		if data == nil {
			return storage.ErrSnapshotNotFound
		}

		snapshot := &models.Snapshot{}
		if err := json.Unmarshal(data, snapshot); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}

		snapshot.Synced = true

		updated, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}

		if err := bucket.Put([]byte(snapshotID), updated); err != nil {
			return fmt.Errorf("failed to update snapshot: %w", err)
		}

		return nil
	})
}
