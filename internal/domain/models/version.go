package models

import (
	"time"
)

// NoteVersion is a point-in-time snapshot of a note's title and content,
// taken before each content update. AutoSave distinguishes periodic
// editor snapshots from explicit saves; pruning evicts auto-saves first.
type NoteVersion struct {
	ID        string    `json:"id" db:"id"`
	NoteID    string    `json:"note_id" db:"note_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	WordCount int       `json:"word_count" db:"word_count"`
	CharCount int       `json:"char_count" db:"char_count"`
	AutoSave  bool      `json:"auto_save" db:"auto_save"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
