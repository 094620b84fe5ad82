package services

import (
	"context"

	"inkwell/internal/domain/models"
)

// VersionService defines version-history operations. Snapshot creation
// is internal to note updates; this surface is read + restore.
type VersionService interface {
	// ListVersions lists a note's versions, newest first
	ListVersions(ctx context.Context, userID, noteID string, limit int) ([]models.NoteVersion, error)

	// RestoreVersion copies a version's title/content back onto the note.
	// The note's current state is snapshotted first as a manual save.
	RestoreVersion(ctx context.Context, userID, noteID, versionID string) (*models.Note, error)
}
