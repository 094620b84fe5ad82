package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/domain/services"
	"inkwell/internal/httputil"
)

// OCRHandler handles text-extraction HTTP requests
type OCRHandler struct {
	ocrService services.OCRService
	logger     *slog.Logger
}

// NewOCRHandler creates a new OCR handler
func NewOCRHandler(ocrService services.OCRService, logger *slog.Logger) *OCRHandler {
	return &OCRHandler{
		ocrService: ocrService,
		logger:     logger,
	}
}

// ExtractText runs document text detection over an uploaded image
// POST /api/ocr/extract
func (h *OCRHandler) ExtractText(w http.ResponseWriter, r *http.Request) {
	var req services.ExtractTextRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}
	req.UserID = httputil.GetUserID(r)

	result, err := h.ocrService.ExtractText(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
