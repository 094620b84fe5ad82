package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

const noteColumns = "id, user_id, folder_id, title, content, plain_text, tone, word_count, tags, pinned, created_at, updated_at"

// PostgresNoteRepository implements the NoteRepository interface
type PostgresNoteRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *RepositoryConfig) repositories.NoteRepository {
	return &PostgresNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new note
func (r *PostgresNoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, folder_id, title, content, plain_text, tone, word_count, tags, pinned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, r.tables.Notes)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		note.UserID,
		note.FolderID,
		note.Title,
		note.Content,
		note.PlainText,
		note.Tone,
		note.WordCount,
		note.Tags,
		note.Pinned,
		note.CreatedAt,
		note.UpdatedAt,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder does not exist: %w", domain.ErrValidation)
		}
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note by ID
func (r *PostgresNoteRepository) GetByID(ctx context.Context, id, userID string) (*models.Note, error) {
	if !isValidUUID(id) {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, noteColumns, r.tables.Notes)

	var note models.Note
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID).Scan(
		&note.ID,
		&note.UserID,
		&note.FolderID,
		&note.Title,
		&note.Content,
		&note.PlainText,
		&note.Tone,
		&note.WordCount,
		&note.Tags,
		&note.Pinned,
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &note, nil
}

// Update updates an existing note
func (r *PostgresNoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, title = $2, content = $3, plain_text = $4, tone = $5, word_count = $6, tags = $7, pinned = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		note.FolderID,
		note.Title,
		note.Content,
		note.PlainText,
		note.Tone,
		note.WordCount,
		note.Tags,
		note.Pinned,
		note.UpdatedAt,
		note.ID,
		note.UserID,
	)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder does not exist: %w", domain.ErrValidation)
		}
		return fmt.Errorf("update note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a note
func (r *PostgresNoteRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Notes)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteAllByFolder deletes every note in a folder and returns their ids
func (r *PostgresNoteRepository) DeleteAllByFolder(ctx context.Context, folderID, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE folder_id = $1 AND user_id = $2
		RETURNING id
	`, r.tables.Notes)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderID, userID)
	if err != nil {
		return nil, fmt.Errorf("delete notes in folder: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan deleted note id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deleted notes: %w", err)
	}

	return ids, nil
}

// List lists notes matching the filter, pinned first, newest first
func (r *PostgresNoteRepository) List(ctx context.Context, userID string, filter *models.NoteFilter) ([]models.Note, int, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.FolderID != nil {
		if *filter.FolderID == "" {
			where = append(where, "folder_id IS NULL")
		} else {
			args = append(args, *filter.FolderID)
			where = append(where, fmt.Sprintf("folder_id = $%d", len(args)))
		}
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		where = append(where, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	if filter.Tone != "" {
		args = append(args, filter.Tone)
		where = append(where, fmt.Sprintf("tone = $%d", len(args)))
	}
	if filter.Pinned != nil {
		args = append(args, *filter.Pinned)
		where = append(where, fmt.Sprintf("pinned = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR plain_text ILIKE $%d)", len(args), len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tables.Notes, whereClause)
	var total int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notes: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	limitArg := len(args)
	args = append(args, filter.Offset)
	offsetArg := len(args)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY pinned DESC, updated_at DESC
		LIMIT $%d OFFSET $%d
	`, noteColumns, r.tables.Notes, whereClause, limitArg, offsetArg)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var note models.Note
		err := rows.Scan(
			&note.ID,
			&note.UserID,
			&note.FolderID,
			&note.Title,
			&note.Content,
			&note.PlainText,
			&note.Tone,
			&note.WordCount,
			&note.Tags,
			&note.Pinned,
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, total, nil
}
