package config

const (
	// MaxNoteTitleLength is the maximum length for note titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxNoteTitleLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Same as note titles for consistency.
	MaxFolderNameLength = 255

	// MaxNoteContentBytes caps the HTML content of a single note.
	MaxNoteContentBytes = 1 << 20 // 1MB

	// MaxTagsPerNote bounds the tag list on a note.
	MaxTagsPerNote = 20

	// MaxTagLength is the maximum length of a single tag.
	MaxTagLength = 50

	// MaxVersionsPerNote bounds version history per note. Auto-save
	// snapshots are pruned before manual saves once the cap is hit.
	MaxVersionsPerNote = 50

	// MaxVersionPageSize bounds a single version-history listing.
	MaxVersionPageSize = 100

	// MaxAIInputChars caps text sent to the generative API.
	MaxAIInputChars = 30000

	// MaxOCRImageBytes caps the decoded image payload for OCR requests.
	// Vision rejects images over 20MB; stay well under.
	MaxOCRImageBytes = 10 << 20 // 10MB

	// MaxAudioBytes caps the decoded audio payload for transcription.
	MaxAudioBytes = 10 << 20 // 10MB
)
