package models

import (
	"time"
)

// Tone describes the writing tone attached to a note. The mobile client
// surfaces these as preset chips; the AI rewrite action targets one of them.
type Tone string

const (
	ToneNeutral      Tone = "neutral"
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
)

// Tones lists every valid tone value, in display order.
var Tones = []Tone{ToneNeutral, ToneFormal, ToneCasual, ToneProfessional, ToneFriendly}

// ValidTone reports whether t is a known tone value.
func ValidTone(t Tone) bool {
	for _, known := range Tones {
		if t == known {
			return true
		}
	}
	return false
}

type Note struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	FolderID  *string   `json:"folder_id" db:"folder_id"` // NULL = unfiled
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`       // Sanitized HTML
	PlainText string    `json:"plain_text" db:"plain_text"` // Derived mirror of Content
	Tone      Tone      `json:"tone" db:"tone"`
	WordCount int       `json:"word_count" db:"word_count"`
	Tags      []string  `json:"tags" db:"tags"`
	Pinned    bool      `json:"pinned" db:"pinned"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NoteFilter narrows note listings. Zero values mean "no constraint".
type NoteFilter struct {
	FolderID *string // nil = all folders; pointer to "" = unfiled only
	Tag      string
	Tone     Tone
	Pinned   *bool
	Search   string // substring match over title and plain_text
	Limit    int
	Offset   int
}

type NoteListResponse struct {
	Notes []Note `json:"notes"`
	Total int    `json:"total"`
}
