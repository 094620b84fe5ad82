package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// VersionRepository defines data access operations for note versions
type VersionRepository interface {
	// Create stores a new version snapshot
	Create(ctx context.Context, version *models.NoteVersion) error

	// GetByID retrieves a version by ID, scoped to the owning user
	GetByID(ctx context.Context, id, userID string) (*models.NoteVersion, error)

	// ListByNote lists versions of a note, newest first
	ListByNote(ctx context.Context, noteID, userID string, limit int) ([]models.NoteVersion, error)

	// DeleteByNote removes all versions of a note
	DeleteByNote(ctx context.Context, noteID, userID string) error

	// Prune enforces the per-note version cap: auto-save snapshots are
	// evicted before manual saves, oldest first
	Prune(ctx context.Context, noteID, userID string, keep int) error
}
