package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"inkwell/internal/domain/services"
	"inkwell/internal/httputil"
)

// VersionHandler handles version-history HTTP requests
type VersionHandler struct {
	versionService services.VersionService
	logger         *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(versionService services.VersionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{
		versionService: versionService,
		logger:         logger,
	}
}

// ListVersions lists a note's versions, newest first
// GET /api/notes/{id}/versions?limit=
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	versions, err := h.versionService.ListVersions(r.Context(), httputil.GetUserID(r), r.PathValue("id"), limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"versions": versions})
}

// RestoreVersion copies a version's content back onto the note
// POST /api/notes/{id}/versions/{versionID}/restore
func (h *VersionHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	note, err := h.versionService.RestoreVersion(
		r.Context(),
		httputil.GetUserID(r),
		r.PathValue("id"),
		r.PathValue("versionID"),
	)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, note)
}
