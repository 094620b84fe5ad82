package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// NoteRepository defines data access operations for notes
type NoteRepository interface {
	// Create creates a new note
	Create(ctx context.Context, note *models.Note) error

	// GetByID retrieves a note by ID, scoped to the owning user
	GetByID(ctx context.Context, id, userID string) (*models.Note, error)

	// Update updates an existing note
	Update(ctx context.Context, note *models.Note) error

	// Delete deletes a note
	Delete(ctx context.Context, id, userID string) error

	// DeleteAllByFolder deletes every note in a folder, returning the ids
	// of the deleted notes so dependent rows can be cleaned up
	DeleteAllByFolder(ctx context.Context, folderID, userID string) ([]string, error)

	// List lists notes matching the filter, newest first (pinned first)
	List(ctx context.Context, userID string, filter *models.NoteFilter) ([]models.Note, int, error)
}
