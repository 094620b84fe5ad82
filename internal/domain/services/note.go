package services

import (
	"context"

	"inkwell/internal/domain/models"
	"inkwell/internal/httputil"
)

// CreateNoteRequest carries note creation input. UserID is set from the
// auth context, never from the request body.
type CreateNoteRequest struct {
	UserID   string      `json:"-"`
	FolderID *string     `json:"folder_id,omitempty"`
	Title    string      `json:"title"`
	Content  string      `json:"content"`
	Tone     models.Tone `json:"tone,omitempty"`
	Tags     []string    `json:"tags,omitempty"`
	Pinned   bool        `json:"pinned,omitempty"`
}

// UpdateNoteRequest carries PATCH semantics: nil pointer = don't change.
// FolderID is tri-state (absent = keep, null = move to root).
type UpdateNoteRequest struct {
	UserID   string                  `json:"-"`
	FolderID httputil.OptionalString `json:"folder_id"`
	Title    *string                 `json:"title,omitempty"`
	Content  *string                 `json:"content,omitempty"`
	Tone     *models.Tone            `json:"tone,omitempty"`
	Tags     *[]string               `json:"tags,omitempty"`
	Pinned   *bool                   `json:"pinned,omitempty"`
	AutoSave bool                    `json:"auto_save,omitempty"` // marks the pre-update snapshot
}

// ExportFormat selects the note export rendering.
type ExportFormat string

const (
	ExportMarkdown ExportFormat = "markdown"
	ExportText     ExportFormat = "text"
)

// NoteExport is a rendered note in a portable format.
type NoteExport struct {
	Title    string       `json:"title"`
	Format   ExportFormat `json:"format"`
	Body     string       `json:"body"`
	Filename string       `json:"filename"`
}

// NoteService defines note business operations
type NoteService interface {
	CreateNote(ctx context.Context, req *CreateNoteRequest) (*models.Note, error)
	GetNote(ctx context.Context, userID, id string) (*models.Note, error)
	UpdateNote(ctx context.Context, id string, req *UpdateNoteRequest) (*models.Note, error)
	DeleteNote(ctx context.Context, userID, id string) error
	ListNotes(ctx context.Context, userID string, filter *models.NoteFilter) (*models.NoteListResponse, error)
	ExportNote(ctx context.Context, userID, id string, format ExportFormat) (*NoteExport, error)
}
