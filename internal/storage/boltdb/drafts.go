package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/essaykeeper/essaykeeper/internal/models"
	"github.com/essaykeeper/essaykeeper/internal/storage"
)

// guard возвращает ошибку если хранилище уже закрыто
func (s *Storage) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	return nil
}

// SaveDraft stores or overwrites the draft for its essay ID
func (s *Storage) SaveDraft(ctx context.Context, draft *models.Draft) error {
	if err := s.guard(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDrafts)
		if bucket == nil {
			return fmt.Errorf("drafts bucket not found")
		}

		// Сериализуем черновик в JSON
		data, err := json.Marshal(draft)
		if err != nil {
			return fmt.Errorf("failed to marshal draft: %w", err)
		}

		// Сохраняем по essayID
		if err := bucket.Put([]byte(draft.EssayID), data); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}

		return nil
	})
}

// GetDraft retrieves the draft by essay ID
func (s *Storage) GetDraft(ctx context.Context, essayID string) (*models.Draft, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var draft *models.Draft

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDrafts)
		if bucket == nil {
			return fmt.Errorf("drafts bucket not found")
		}

		data := bucket.Get([]byte(essayID))
		if data == nil {
			return storage.ErrDraftNotFound
		}

		draft = &models.Draft{}
		if err := json.Unmarshal(data, draft); err != nil {
			return fmt.Errorf("failed to unmarshal draft: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return draft, nil
}

// ListDrafts returns drafts matching the filter, newest-first by timestamp
func (s *Storage) ListDrafts(ctx context.Context, filter storage.DraftFilter) ([]*models.Draft, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}

	var drafts []*models.Draft

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDrafts)
		if bucket == nil {
			return fmt.Errorf("drafts bucket not found")
		}

		// Итерируемся по всем черновикам и фильтруем
		return bucket.ForEach(func(k, v []byte) error {
			draft := &models.Draft{}
			if err := json.Unmarshal(v, draft); err != nil {
				return fmt.Errorf("failed to unmarshal draft: %w", err)
			}

			if filter.UserID != "" && draft.UserID != filter.UserID {
				return nil
			}
			if filter.Synced != nil && draft.Synced != *filter.Synced {
				return nil
			}

			drafts = append(drafts, draft)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	// Сортируем от новых к старым
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].Timestamp > drafts[j].Timestamp
	})

	if filter.Limit > 0 && len(drafts) > filter.Limit {
		drafts = drafts[:filter.Limit]
	}

	return drafts, nil
}

// DeleteDraft removes the draft; deleting a missing draft is not an error
func (s *Storage) DeleteDraft(ctx context.Context, essayID string) error {
	if err := s.guard(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDrafts)
		if bucket == nil {
			return fmt.Errorf("drafts bucket not found")
		}

		return bucket.Delete([]byte(essayID))
	})
}

// MarkDraftSynced sets the synced flag and sync time on the draft
func (s *Storage) MarkDraftSynced(ctx context.Context, essayID string, syncedAt time.Time) error {
	if err := s.guard(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketDrafts)
		if bucket == nil {
			return fmt.Errorf("drafts bucket not found")
		}

		data := bucket.Get([]byte(essayID))
		if data == nil {
			return storage.ErrDraftNotFound
		}

		draft := &models.Draft{}
		if err := json.Unmarshal(data, draft); err != nil {
			return fmt.Errorf("failed to unmarshal draft: %w", err)
		}

		draft.Synced = true
		draft.SyncedAt = &syncedAt

		updated, err := json.Marshal(draft)
		if err != nil {
			return fmt.Errorf("failed to marshal draft: %w", err)
		}

		if err := bucket.Put([]byte(essayID), updated); err != nil {
			return fmt.Errorf("failed to update draft: %w", err)
		}

		return nil
	})
}
