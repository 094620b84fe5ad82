package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID, scoped to the owning user
	GetByID(ctx context.Context, id, userID string) (*models.Folder, error)

	// Update updates an existing folder
	Update(ctx context.Context, folder *models.Folder) error

	// Delete deletes a folder
	Delete(ctx context.Context, id, userID string) error

	// List lists the user's folders ordered by sort_order, then name
	List(ctx context.Context, userID string) ([]models.Folder, error)

	// IncrementNoteCount adjusts the denormalized note counter by delta
	IncrementNoteCount(ctx context.Context, id, userID string, delta int) error

	// UpdateSortOrder sets the sort_order of a single folder
	UpdateSortOrder(ctx context.Context, id, userID string, sortOrder int) error

	// MaxSortOrder returns the highest sort_order among the user's folders,
	// or -1 when the user has none
	MaxSortOrder(ctx context.Context, userID string) (int, error)
}
