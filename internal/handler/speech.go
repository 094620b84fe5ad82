package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/domain/services"
	"inkwell/internal/httputil"
)

// SpeechHandler handles transcription HTTP requests
type SpeechHandler struct {
	speechService services.SpeechService
	logger        *slog.Logger
}

// NewSpeechHandler creates a new speech handler
func NewSpeechHandler(speechService services.SpeechService, logger *slog.Logger) *SpeechHandler {
	return &SpeechHandler{
		speechService: speechService,
		logger:        logger,
	}
}

// Transcribe runs speech recognition over recorded audio
// POST /api/speech/transcribe
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req services.TranscribeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		return
	}
	req.UserID = httputil.GetUserID(r)

	result, err := h.speechService.Transcribe(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
