package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"inkwell/internal/domain/models"
	"inkwell/internal/domain/services"
	"inkwell/internal/httputil"
)

// NoteHandler handles note HTTP requests
type NoteHandler struct {
	noteService services.NoteService
	logger      *slog.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService services.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// CreateNote creates a new note
// POST /api/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req services.CreateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}
	req.UserID = httputil.GetUserID(r)

	note, err := h.noteService.CreateNote(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, note)
}

// GetNote retrieves a note by ID
// GET /api/notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.noteService.GetNote(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// UpdateNote applies a partial update to a note
// PATCH /api/notes/{id}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}
	req.UserID = httputil.GetUserID(r)

	note, err := h.noteService.UpdateNote(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}

// DeleteNote deletes a note and its version history
// DELETE /api/notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.noteService.DeleteNote(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListNotes lists the user's notes with optional filters
// GET /api/notes?folder_id=&tag=&tone=&pinned=&q=&limit=&offset=
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := &models.NoteFilter{
		Tag:    query.Get("tag"),
		Tone:   models.Tone(query.Get("tone")),
		Search: query.Get("q"),
	}

	// folder_id= (empty value) selects unfiled notes; absent means all
	if query.Has("folder_id") {
		folderID := query.Get("folder_id")
		filter.FolderID = &folderID
	}
	if raw := query.Get("pinned"); raw != "" {
		pinned, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "pinned must be a boolean")
			return
		}
		filter.Pinned = &pinned
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	resp, err := h.noteService.ListNotes(r.Context(), httputil.GetUserID(r), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// ExportNote renders a note as markdown or plain text
// GET /api/notes/{id}/export?format=markdown|text
func (h *NoteHandler) ExportNote(w http.ResponseWriter, r *http.Request) {
	format := services.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = services.ExportMarkdown
	}

	export, err := h.noteService.ExportNote(r.Context(), httputil.GetUserID(r), r.PathValue("id"), format)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, export)
}
