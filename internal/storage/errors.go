package storage

import "errors"

// Common storage errors
var (
	// ErrDraftNotFound indicates that no draft exists for the essay ID
	ErrDraftNotFound = errors.New("draft not found")

	// ErrSnapshotNotFound indicates that snapshot was not found
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
