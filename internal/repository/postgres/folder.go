package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

const folderColumns = "id, user_id, name, color, icon, note_count, sort_order, created_at, updated_at"

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, name, color, icon, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, note_count, created_at, updated_at
	`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.UserID,
		folder.Name,
		folder.Color,
		folder.Icon,
		folder.SortOrder,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.NoteCount, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return r.nameConflict(ctx, folder.UserID, folder.Name)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// nameConflict resolves a unique-name violation into a structured conflict
// carrying the existing folder's id. Falls back to the plain sentinel if
// the existing folder cannot be looked up.
func (r *PostgresFolderRepository) nameConflict(ctx context.Context, userID, name string) error {
	query := fmt.Sprintf(`
		SELECT id FROM %s
		WHERE user_id = $1 AND name = $2
	`, r.tables.Folders)

	var existingID string
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID, name).Scan(&existingID); err != nil {
		return fmt.Errorf("folder '%s' already exists: %w", name, domain.ErrConflict)
	}

	return &domain.ConflictError{
		Message:      fmt.Sprintf("folder '%s' already exists", name),
		ResourceType: "folder",
		ResourceID:   existingID,
	}
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, userID string) (*models.Folder, error) {
	if !isValidUUID(id) {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, folderColumns, r.tables.Folders)

	var folder models.Folder
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.Name,
		&folder.Color,
		&folder.Icon,
		&folder.NoteCount,
		&folder.SortOrder,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// Update updates an existing folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, color = $2, icon = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.Name,
		folder.Color,
		folder.Icon,
		folder.UpdatedAt,
		folder.ID,
		folder.UserID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return r.nameConflict(ctx, folder.UserID, folder.Name)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a folder
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List lists the user's folders ordered by sort_order, then name
func (r *PostgresFolderRepository) List(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY sort_order ASC, name ASC
	`, folderColumns, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.UserID,
			&folder.Name,
			&folder.Color,
			&folder.Icon,
			&folder.NoteCount,
			&folder.SortOrder,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// IncrementNoteCount adjusts the denormalized note counter by delta.
// GREATEST guards against the counter drifting below zero.
func (r *PostgresFolderRepository) IncrementNoteCount(ctx context.Context, id, userID string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET note_count = GREATEST(note_count + $1, 0)
		WHERE id = $2 AND user_id = $3
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, delta, id, userID)
	if err != nil {
		return fmt.Errorf("increment note count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// UpdateSortOrder sets the sort_order of a single folder
func (r *PostgresFolderRepository) UpdateSortOrder(ctx context.Context, id, userID string, sortOrder int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = $1
		WHERE id = $2 AND user_id = $3
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, sortOrder, id, userID)
	if err != nil {
		return fmt.Errorf("update sort order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// MaxSortOrder returns the highest sort_order among the user's folders,
// or -1 when the user has none
func (r *PostgresFolderRepository) MaxSortOrder(ctx context.Context, userID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(sort_order), -1) FROM %s
		WHERE user_id = $1
	`, r.tables.Folders)

	var max int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	return max, nil
}
