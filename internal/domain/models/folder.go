package models

import (
	"time"
)

type Folder struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"` // #RRGGBB
	Icon      string    `json:"icon" db:"icon"`
	NoteCount int       `json:"note_count" db:"note_count"` // Denormalized, maintained via increments
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
