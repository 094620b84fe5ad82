package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
	"inkwell/internal/middleware"
)

// versionService implements the VersionService interface
type versionService struct {
	versionRepo repositories.VersionRepository
	noteRepo    repositories.NoteRepository
	txManager   repositories.TransactionManager
	analyzer    services.ContentAnalyzer
	logger      *slog.Logger
}

// NewVersionService creates a new version service
func NewVersionService(
	versionRepo repositories.VersionRepository,
	noteRepo repositories.NoteRepository,
	txManager repositories.TransactionManager,
	analyzer services.ContentAnalyzer,
	logger *slog.Logger,
) services.VersionService {
	return &versionService{
		versionRepo: versionRepo,
		noteRepo:    noteRepo,
		txManager:   txManager,
		analyzer:    analyzer,
		logger:      logger,
	}
}

// ListVersions lists a note's versions, newest first. The note lookup
// doubles as the ownership check.
func (s *versionService) ListVersions(ctx context.Context, userID, noteID string, limit int) ([]models.NoteVersion, error) {
	if _, err := s.noteRepo.GetByID(ctx, noteID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > config.MaxVersionPageSize {
		limit = config.MaxVersionPageSize
	}

	versions, err := s.versionRepo.ListByNote(ctx, noteID, userID, limit)
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []models.NoteVersion{}
	}
	return versions, nil
}

// RestoreVersion copies a version's title and content back onto the
// note. The current state is snapshotted first as a manual save so a
// restore is itself undoable.
func (s *versionService) RestoreVersion(ctx context.Context, userID, noteID, versionID string) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID, userID)
	if err != nil {
		return nil, err
	}
	version, err := s.versionRepo.GetByID(ctx, versionID, userID)
	if err != nil {
		return nil, err
	}
	if version.NoteID != noteID {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("version %s not found for note %s", versionID, noteID)}
	}

	snapshot := &models.NoteVersion{
		NoteID:    note.ID,
		UserID:    note.UserID,
		Title:     note.Title,
		Content:   note.Content,
		WordCount: note.WordCount,
		CharCount: len(note.PlainText),
		AutoSave:  false,
		CreatedAt: time.Now(),
	}

	note.Title = version.Title
	note.Content = s.analyzer.Sanitize(version.Content)
	note.PlainText = s.analyzer.PlainText(note.Content)
	note.WordCount = s.analyzer.CountWords(note.PlainText)
	note.UpdatedAt = time.Now()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.versionRepo.Create(txCtx, snapshot); err != nil {
			return err
		}
		if err := s.noteRepo.Update(txCtx, note); err != nil {
			return err
		}
		return s.versionRepo.Prune(txCtx, note.ID, userID, config.MaxVersionsPerNote)
	})
	if err != nil {
		return nil, err
	}

	middleware.TrackNoteOperation("restore")
	s.logger.Info("version restored",
		"note_id", note.ID,
		"version_id", versionID,
		"user_id", userID,
	)

	return note, nil
}
