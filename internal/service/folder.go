package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/domain/services"
	"inkwell/internal/middleware"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const defaultFolderColor = "#6B7280"

// folderService implements the FolderService interface
type folderService struct {
	folderRepo  repositories.FolderRepository
	noteRepo    repositories.NoteRepository
	versionRepo repositories.VersionRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	noteRepo repositories.NoteRepository,
	versionRepo repositories.VersionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo:  folderRepo,
		noteRepo:    noteRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// CreateFolder creates a folder at the end of the user's sort order
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if req.Color == "" {
		req.Color = defaultFolderColor
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	maxOrder, err := s.folderRepo.MaxSortOrder(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	folder := &models.Folder{
		UserID:    req.UserID,
		Name:      strings.TrimSpace(req.Name),
		Color:     req.Color,
		Icon:      req.Icon,
		SortOrder: maxOrder + 1,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created", "id", folder.ID, "user_id", folder.UserID, "name", folder.Name)
	return folder, nil
}

// GetFolder retrieves a folder
func (s *folderService) GetFolder(ctx context.Context, userID, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id, userID)
}

// UpdateFolder renames, recolors or re-icons a folder
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.Name == nil && req.Color == nil && req.Icon == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.Name != nil {
		folder.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		folder.Color = *req.Color
	}
	if req.Icon != nil {
		folder.Icon = *req.Icon
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated", "id", folder.ID, "user_id", folder.UserID)
	return folder, nil
}

// DeleteFolder deletes a folder together with its notes and their
// versions in a single transaction.
func (s *folderService) DeleteFolder(ctx context.Context, userID, id string) error {
	if _, err := s.folderRepo.GetByID(ctx, id, userID); err != nil {
		return err
	}

	var deleted int
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		noteIDs, err := s.noteRepo.DeleteAllByFolder(txCtx, id, userID)
		if err != nil {
			return err
		}
		for _, noteID := range noteIDs {
			if err := s.versionRepo.DeleteByNote(txCtx, noteID, userID); err != nil {
				return err
			}
		}
		deleted = len(noteIDs)
		return s.folderRepo.Delete(txCtx, id, userID)
	})
	if err != nil {
		return err
	}

	middleware.TrackNoteOperation("cascade_delete")
	s.logger.Info("folder deleted", "id", id, "user_id", userID, "notes_deleted", deleted)
	return nil
}

// ListFolders lists the user's folders in sort order
func (s *folderService) ListFolders(ctx context.Context, userID string) ([]models.Folder, error) {
	folders, err := s.folderRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	return folders, nil
}

// ReorderFolders rewrites sort_order to match the given id order. The
// id list must be exactly the user's folder set.
func (s *folderService) ReorderFolders(ctx context.Context, req *services.ReorderFoldersRequest) ([]models.Folder, error) {
	if len(req.FolderIDs) == 0 {
		return nil, fmt.Errorf("%w: folder_ids must not be empty", domain.ErrValidation)
	}

	existing, err := s.folderRepo.List(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(req.FolderIDs) != len(existing) {
		return nil, fmt.Errorf("%w: folder_ids must list every folder exactly once", domain.ErrValidation)
	}
	known := make(map[string]bool, len(existing))
	for _, f := range existing {
		known[f.ID] = true
	}
	seen := make(map[string]bool, len(req.FolderIDs))
	for _, id := range req.FolderIDs {
		if !known[id] {
			return nil, fmt.Errorf("%w: unknown folder id %q", domain.ErrValidation, id)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate folder id %q", domain.ErrValidation, id)
		}
		seen[id] = true
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for i, id := range req.FolderIDs {
			if err := s.folderRepo.UpdateSortOrder(txCtx, id, req.UserID, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folders reordered", "user_id", req.UserID, "count", len(req.FolderIDs))
	return s.folderRepo.List(ctx, req.UserID)
}

func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
		),
		validation.Field(&req.Color, validation.Match(hexColor)),
		validation.Field(&req.Icon, validation.Length(0, 50)),
	)
}

func (s *folderService) validateUpdateRequest(req *services.UpdateFolderRequest) error {
	rules := []*validation.FieldRules{}
	if req.Name != nil {
		rules = append(rules, validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
		))
	}
	if req.Color != nil {
		rules = append(rules, validation.Field(&req.Color, validation.Match(hexColor)))
	}
	if req.Icon != nil {
		rules = append(rules, validation.Field(&req.Icon, validation.Length(0, 50)))
	}
	return validation.ValidateStruct(req, rules...)
}
