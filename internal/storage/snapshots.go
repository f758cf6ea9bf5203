package storage

import (
	"context"

	"github.com/essaykeeper/essaykeeper/internal/models"
)

// SnapshotStorage defines interface for the durable snapshot history
type SnapshotStorage interface {
	// SaveSnapshot stores or updates a snapshot
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) error

	// GetSnapshot retrieves a snapshot by its ID
	// Returns ErrSnapshotNotFound if snapshot doesn't exist
	GetSnapshot(ctx context.Context, snapshotID string) (*models.Snapshot, error)

	// ListSnapshots returns snapshots for the essay, newest-first by Seq.
	// Limit > 0 caps the result size.
	ListSnapshots(ctx context.Context, essayID string, limit int) ([]*models.Snapshot, error)

	// ListSnapshotsAsc returns all snapshots for the essay, oldest-first by Seq
	// Used to rehydrate the in-memory undo stack after a reload
	ListSnapshotsAsc(ctx context.Context, essayID string) ([]*models.Snapshot, error)

	// DeleteSnapshot removes a single snapshot
	// Returns ErrSnapshotNotFound if snapshot doesn't exist
	DeleteSnapshot(ctx context.Context, snapshotID string) error

	// ClearSnapshots removes all snapshots for the essay, returning the count
	ClearSnapshots(ctx context.Context, essayID string) (int, error)

	// TrimSnapshots evicts oldest snapshots above max, returning how many
	TrimSnapshots(ctx context.Context, essayID string, max int) (int, error)

	// GetUnsyncedSnapshots returns snapshots pending remote upload, oldest-first
	GetUnsyncedSnapshots(ctx context.Context, essayID string) ([]*models.Snapshot, error)

	// MarkSnapshotSynced sets the synced flag on a snapshot
	// Returns ErrSnapshotNotFound if snapshot doesn't exist
	MarkSnapshotSynced(ctx context.Context, snapshotID string) error
}
