package storage

import (
	"context"
	"time"

	"github.com/essaykeeper/essaykeeper/internal/models"
)

//go:generate moq -out draftstorage_mock.go . DraftStorage

// DraftFilter narrows ListDrafts results. Нулевое значение не фильтрует.
type DraftFilter struct {
	// Synced при ненулевом значении фильтрует по флагу синхронизации
	Synced *bool
	// UserID при непустом значении оставляет только черновики владельца
	UserID string
	// Limit при положительном значении ограничивает размер результата
	Limit int
}

// DraftStorage defines interface for storing the latest draft per essay
type DraftStorage interface {
	// SaveDraft stores or overwrites the draft for its essay ID
	SaveDraft(ctx context.Context, draft *models.Draft) error

	// GetDraft retrieves the draft by essay ID
	// Returns ErrDraftNotFound if no draft exists
	GetDraft(ctx context.Context, essayID string) (*models.Draft, error)

	// ListDrafts returns drafts matching the filter, newest-first by timestamp
	ListDrafts(ctx context.Context, filter DraftFilter) ([]*models.Draft, error)

	// DeleteDraft removes the draft; deleting a missing draft is not an error
	DeleteDraft(ctx context.Context, essayID string) error

	// MarkDraftSynced sets the synced flag and sync time on the draft
	// Returns ErrDraftNotFound if no draft exists
	MarkDraftSynced(ctx context.Context, essayID string, syncedAt time.Time) error
}
