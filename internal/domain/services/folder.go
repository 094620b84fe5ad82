package services

import (
	"context"

	"inkwell/internal/domain/models"
)

type CreateFolderRequest struct {
	UserID string `json:"-"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

type UpdateFolderRequest struct {
	UserID string  `json:"-"`
	Name   *string `json:"name,omitempty"`
	Color  *string `json:"color,omitempty"`
	Icon   *string `json:"icon,omitempty"`
}

// ReorderFoldersRequest rewrites sort_order to match the given id order.
type ReorderFoldersRequest struct {
	UserID    string   `json:"-"`
	FolderIDs []string `json:"folder_ids"`
}

// FolderService defines folder business operations
type FolderService interface {
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)
	GetFolder(ctx context.Context, userID, id string) (*models.Folder, error)
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*models.Folder, error)
	// DeleteFolder deletes a folder and all its notes and their versions
	DeleteFolder(ctx context.Context, userID, id string) error
	ListFolders(ctx context.Context, userID string) ([]models.Folder, error)
	ReorderFolders(ctx context.Context, req *ReorderFoldersRequest) ([]models.Folder, error)
}
