package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/domain/services"
	"inkwell/internal/httputil"
)

// AIHandler handles text-transformation HTTP requests
type AIHandler struct {
	aiService services.AIService
	logger    *slog.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService services.AIService, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		aiService: aiService,
		logger:    logger,
	}
}

// Transform runs a preset transformation over the given text
// POST /api/ai/transform
func (h *AIHandler) Transform(w http.ResponseWriter, r *http.Request) {
	var req services.TransformRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}
	req.UserID = httputil.GetUserID(r)

	result, err := h.aiService.Transform(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
