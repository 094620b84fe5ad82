package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
	"inkwell/internal/middleware"
)

// noteService implements the NoteService interface
type noteService struct {
	noteRepo    repositories.NoteRepository
	folderRepo  repositories.FolderRepository
	versionRepo repositories.VersionRepository
	txManager   repositories.TransactionManager
	analyzer    services.ContentAnalyzer
	mdConverter *md.Converter
	logger      *slog.Logger
}

// NewNoteService creates a new note service
func NewNoteService(
	noteRepo repositories.NoteRepository,
	folderRepo repositories.FolderRepository,
	versionRepo repositories.VersionRepository,
	txManager repositories.TransactionManager,
	analyzer services.ContentAnalyzer,
	logger *slog.Logger,
) services.NoteService {
	return &noteService{
		noteRepo:    noteRepo,
		folderRepo:  folderRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		analyzer:    analyzer,
		mdConverter: md.NewConverter("", true, nil),
		logger:      logger,
	}
}

// CreateNote creates a note with its derived mirrors. The folder's
// denormalized counter is incremented in the same transaction.
func (s *noteService) CreateNote(ctx context.Context, req *services.CreateNoteRequest) (*models.Note, error) {
	// Normalize empty string folder_id to nil for unfiled notes
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}
	if req.Tone == "" {
		req.Tone = models.ToneNeutral
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	content := s.analyzer.Sanitize(req.Content)
	plainText := s.analyzer.PlainText(content)

	note := &models.Note{
		UserID:    req.UserID,
		FolderID:  req.FolderID,
		Title:     strings.TrimSpace(req.Title),
		Content:   content,
		PlainText: plainText,
		Tone:      req.Tone,
		WordCount: s.analyzer.CountWords(plainText),
		Tags:      normalizeTags(req.Tags),
		Pinned:    req.Pinned,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if note.FolderID != nil {
			// Verify the target folder exists and belongs to the user
			if _, err := s.folderRepo.GetByID(txCtx, *note.FolderID, req.UserID); err != nil {
				return err
			}
		}

		if err := s.noteRepo.Create(txCtx, note); err != nil {
			return err
		}

		if note.FolderID != nil {
			return s.folderRepo.IncrementNoteCount(txCtx, *note.FolderID, req.UserID, 1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.TrackNoteOperation("create")
	s.logger.Info("note created",
		"id", note.ID,
		"user_id", note.UserID,
		"folder_id", note.FolderID,
		"word_count", note.WordCount,
	)

	return note, nil
}

// GetNote retrieves a note
func (s *noteService) GetNote(ctx context.Context, userID, id string) (*models.Note, error) {
	return s.noteRepo.GetByID(ctx, id, userID)
}

// UpdateNote applies PATCH semantics. A content change snapshots the
// previous state as a version before the update; moving between folders
// adjusts both counters in the same transaction.
func (s *noteService) UpdateNote(ctx context.Context, id string, req *services.UpdateNoteRequest) (*models.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, id, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	oldFolderID := note.FolderID

	// Snapshot the pre-update state before any request field touches it
	var snapshot *models.NoteVersion
	if req.Content != nil {
		snapshot = &models.NoteVersion{
			NoteID:    note.ID,
			UserID:    note.UserID,
			Title:     note.Title,
			Content:   note.Content,
			WordCount: note.WordCount,
			CharCount: len(note.PlainText),
			AutoSave:  req.AutoSave,
			CreatedAt: time.Now(),
		}
	}

	if req.Title != nil {
		note.Title = strings.TrimSpace(*req.Title)
	}
	if req.Tone != nil {
		note.Tone = *req.Tone
	}
	if req.Tags != nil {
		note.Tags = normalizeTags(*req.Tags)
	}
	if req.Pinned != nil {
		note.Pinned = *req.Pinned
	}

	// Tri-state: only move the note if folder_id was present in the request
	if req.FolderID.Present {
		if req.FolderID.Value != nil && *req.FolderID.Value != "" {
			note.FolderID = req.FolderID.Value
		} else {
			// null or "" = move to unfiled
			note.FolderID = nil
		}
	}

	if req.Content != nil {
		note.Content = s.analyzer.Sanitize(*req.Content)
		note.PlainText = s.analyzer.PlainText(note.Content)
		note.WordCount = s.analyzer.CountWords(note.PlainText)
	}

	note.UpdatedAt = time.Now()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		moved := !folderRefEqual(oldFolderID, note.FolderID)

		if moved && note.FolderID != nil {
			// Verify the target folder exists and belongs to the user
			if _, err := s.folderRepo.GetByID(txCtx, *note.FolderID, req.UserID); err != nil {
				return err
			}
		}

		if err := s.noteRepo.Update(txCtx, note); err != nil {
			return err
		}

		if moved {
			if oldFolderID != nil {
				if err := s.folderRepo.IncrementNoteCount(txCtx, *oldFolderID, req.UserID, -1); err != nil {
					return err
				}
			}
			if note.FolderID != nil {
				if err := s.folderRepo.IncrementNoteCount(txCtx, *note.FolderID, req.UserID, 1); err != nil {
					return err
				}
			}
		}

		if snapshot != nil {
			if err := s.versionRepo.Create(txCtx, snapshot); err != nil {
				return err
			}
			if err := s.versionRepo.Prune(txCtx, note.ID, req.UserID, config.MaxVersionsPerNote); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.TrackNoteOperation("update")
	s.logger.Info("note updated",
		"id", note.ID,
		"user_id", note.UserID,
		"snapshotted", snapshot != nil,
	)

	return note, nil
}

// DeleteNote removes the note, its versions, and its folder-counter
// contribution in one transaction.
func (s *noteService) DeleteNote(ctx context.Context, userID, id string) error {
	note, err := s.noteRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.versionRepo.DeleteByNote(txCtx, id, userID); err != nil {
			return err
		}
		if err := s.noteRepo.Delete(txCtx, id, userID); err != nil {
			return err
		}
		if note.FolderID != nil {
			return s.folderRepo.IncrementNoteCount(txCtx, *note.FolderID, userID, -1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	middleware.TrackNoteOperation("delete")
	s.logger.Info("note deleted", "id", id, "user_id", userID)

	return nil
}

// ListNotes lists notes matching the filter
func (s *noteService) ListNotes(ctx context.Context, userID string, filter *models.NoteFilter) (*models.NoteListResponse, error) {
	if filter == nil {
		filter = &models.NoteFilter{}
	}
	if filter.Tone != "" && !models.ValidTone(filter.Tone) {
		return nil, fmt.Errorf("%w: unknown tone %q", domain.ErrValidation, filter.Tone)
	}

	notes, total, err := s.noteRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	if notes == nil {
		notes = []models.Note{}
	}

	return &models.NoteListResponse{Notes: notes, Total: total}, nil
}

// ExportNote renders a note as markdown or plain text
func (s *noteService) ExportNote(ctx context.Context, userID, id string, format services.ExportFormat) (*services.NoteExport, error) {
	note, err := s.noteRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	export := &services.NoteExport{
		Title:  note.Title,
		Format: format,
	}

	switch format {
	case services.ExportMarkdown:
		body, err := s.mdConverter.ConvertString(note.Content)
		if err != nil {
			return nil, fmt.Errorf("convert note to markdown: %w", err)
		}
		export.Body = body
		export.Filename = slugify(note.Title) + ".md"
	case services.ExportText:
		export.Body = note.PlainText
		export.Filename = slugify(note.Title) + ".txt"
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", domain.ErrValidation, format)
	}

	return export, nil
}

// validateCreateRequest validates a note creation request
func (s *noteService) validateCreateRequest(req *services.CreateNoteRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxNoteTitleLength),
		),
		validation.Field(&req.Content,
			validation.Length(0, config.MaxNoteContentBytes),
		),
		validation.Field(&req.Tone, validation.By(toneRule)),
		validation.Field(&req.Tags,
			validation.Length(0, config.MaxTagsPerNote),
			validation.Each(validation.Length(1, config.MaxTagLength)),
		),
	)
}

// validateUpdateRequest validates a note update request
func (s *noteService) validateUpdateRequest(req *services.UpdateNoteRequest) error {
	if req.Title == nil && req.Content == nil && req.Tone == nil &&
		req.Tags == nil && req.Pinned == nil && !req.FolderID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	rules := []*validation.FieldRules{}
	if req.Title != nil {
		rules = append(rules, validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxNoteTitleLength),
		))
	}
	if req.Content != nil {
		rules = append(rules, validation.Field(&req.Content,
			validation.Length(0, config.MaxNoteContentBytes),
		))
	}
	if req.Tone != nil {
		if !models.ValidTone(*req.Tone) {
			return fmt.Errorf("unknown tone %q", *req.Tone)
		}
	}
	if req.Tags != nil {
		rules = append(rules, validation.Field(&req.Tags,
			validation.Length(0, config.MaxTagsPerNote),
			validation.Each(validation.Length(1, config.MaxTagLength)),
		))
	}

	return validation.ValidateStruct(req, rules...)
}

// toneRule validates a Tone field value for ozzo-validation
func toneRule(value interface{}) error {
	tone, _ := value.(models.Tone)
	if tone == "" {
		return nil
	}
	if !models.ValidTone(tone) {
		return fmt.Errorf("unknown tone %q", tone)
	}
	return nil
}

// normalizeTags trims, lowercases and dedupes the tag list,
// preserving first-seen order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func folderRefEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify produces a safe filename stem from a note title
func slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "note"
	}
	return slug
}
