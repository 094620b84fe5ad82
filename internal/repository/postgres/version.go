package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

const versionColumns = "id, note_id, user_id, title, content, word_count, char_count, auto_save, created_at"

// PostgresVersionRepository implements the VersionRepository interface
type PostgresVersionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create stores a new version snapshot
func (r *PostgresVersionRepository) Create(ctx context.Context, version *models.NoteVersion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (note_id, user_id, title, content, word_count, char_count, auto_save, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, r.tables.Versions)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		version.NoteID,
		version.UserID,
		version.Title,
		version.Content,
		version.WordCount,
		version.CharCount,
		version.AutoSave,
		version.CreatedAt,
	).Scan(&version.ID, &version.CreatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("note %s: %w", version.NoteID, domain.ErrNotFound)
		}
		return fmt.Errorf("create version: %w", err)
	}

	return nil
}

// GetByID retrieves a version by ID
func (r *PostgresVersionRepository) GetByID(ctx context.Context, id, userID string) (*models.NoteVersion, error) {
	if !isValidUUID(id) {
		return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, versionColumns, r.tables.Versions)

	var version models.NoteVersion
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID).Scan(
		&version.ID,
		&version.NoteID,
		&version.UserID,
		&version.Title,
		&version.Content,
		&version.WordCount,
		&version.CharCount,
		&version.AutoSave,
		&version.CreatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("version %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	return &version, nil
}

// ListByNote lists versions of a note, newest first
func (r *PostgresVersionRepository) ListByNote(ctx context.Context, noteID, userID string, limit int) ([]models.NoteVersion, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE note_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, versionColumns, r.tables.Versions)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, noteID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.NoteVersion
	for rows.Next() {
		var version models.NoteVersion
		err := rows.Scan(
			&version.ID,
			&version.NoteID,
			&version.UserID,
			&version.Title,
			&version.Content,
			&version.WordCount,
			&version.CharCount,
			&version.AutoSave,
			&version.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return versions, nil
}

// DeleteByNote removes all versions of a note
func (r *PostgresVersionRepository) DeleteByNote(ctx context.Context, noteID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE note_id = $1 AND user_id = $2
	`, r.tables.Versions)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, noteID, userID); err != nil {
		return fmt.Errorf("delete versions: %w", err)
	}

	return nil
}

// Prune enforces the per-note version cap. Rows are ranked so manual
// saves outrank auto-saves and newer rows outrank older ones; everything
// past the cap is deleted.
func (r *PostgresVersionRepository) Prune(ctx context.Context, noteID, userID string, keep int) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					ORDER BY auto_save ASC, created_at DESC
				) AS rank
				FROM %s
				WHERE note_id = $1 AND user_id = $2
			) ranked
			WHERE ranked.rank > $3
		)
	`, r.tables.Versions, r.tables.Versions)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, noteID, userID, keep); err != nil {
		return fmt.Errorf("prune versions: %w", err)
	}

	return nil
}
