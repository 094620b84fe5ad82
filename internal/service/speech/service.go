// Package speech transcribes recorded audio through the Cloud
// Speech-to-Text recognize API.
package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/services"
	"inkwell/internal/middleware"
	"inkwell/internal/retry"
)

const (
	upstreamName        = "speech"
	defaultLanguageCode = "en-US"
	defaultSampleRate   = 16000

	// recognizeTimeout bounds each recognize attempt
	recognizeTimeout = 60 * time.Second
)

// allowedEncodings are the audio encodings the endpoint accepts, as the
// recognize API names them.
var allowedEncodings = map[string]bool{
	"LINEAR16":  true,
	"FLAC":      true,
	"MP3":       true,
	"OGG_OPUS":  true,
	"WEBM_OPUS": true,
	"AMR":       true,
}

// supportedLanguages are the BCP-47 codes the mobile client offers.
var supportedLanguages = map[string]bool{
	"en-US": true,
	"en-GB": true,
	"es-ES": true,
	"es-MX": true,
	"fr-FR": true,
	"de-DE": true,
	"it-IT": true,
	"pt-BR": true,
	"ja-JP": true,
	"ko-KR": true,
	"zh-CN": true,
	"hi-IN": true,
}

// Recognizer abstracts the recognize call for testing.
type Recognizer interface {
	Recognize(ctx context.Context, req *speechapi.RecognizeRequest) (*speechapi.RecognizeResponse, error)
}

type apiRecognizer struct {
	service *speechapi.Service
}

// NewRecognizer builds the hosted Speech-to-Text recognizer
func NewRecognizer(ctx context.Context, apiKey string) (Recognizer, error) {
	svc, err := speechapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create speech client: %w", err)
	}
	return &apiRecognizer{service: svc}, nil
}

func (r *apiRecognizer) Recognize(ctx context.Context, req *speechapi.RecognizeRequest) (*speechapi.RecognizeResponse, error) {
	return r.service.Speech.Recognize(req).Context(ctx).Do()
}

// speechService implements the SpeechService interface.
type speechService struct {
	recognizer Recognizer
	retry      retry.Options
	logger     *slog.Logger
}

// NewService creates the transcription service
func NewService(recognizer Recognizer, logger *slog.Logger) services.SpeechService {
	opts := retry.DefaultOptions()
	opts.AttemptTimeout = recognizeTimeout
	opts.OnRetry = func(attempt int, err error) {
		middleware.TrackUpstreamRetry(upstreamName)
		logger.Warn("retrying transcription", "attempt", attempt, "error", err)
	}
	return &speechService{recognizer: recognizer, retry: opts, logger: logger}
}

// Transcribe runs speech recognition over a base64 audio payload
func (s *speechService) Transcribe(ctx context.Context, req *services.TranscribeRequest) (*services.TranscribeResult, error) {
	if req.Audio == "" {
		return nil, fmt.Errorf("%w: audio is required", domain.ErrValidation)
	}
	decoded, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return nil, fmt.Errorf("%w: audio is not valid base64", domain.ErrValidation)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: audio is empty", domain.ErrValidation)
	}
	if len(decoded) > config.MaxAudioBytes {
		return nil, fmt.Errorf("%w: audio exceeds %d bytes", domain.ErrValidation, config.MaxAudioBytes)
	}

	encoding := strings.ToUpper(req.Encoding)
	if encoding == "" {
		encoding = "LINEAR16"
	}
	if !allowedEncodings[encoding] {
		return nil, fmt.Errorf("%w: unsupported encoding %q", domain.ErrValidation, req.Encoding)
	}

	sampleRate := req.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}
	if sampleRate < 8000 || sampleRate > 48000 {
		return nil, fmt.Errorf("%w: sample_rate must be between 8000 and 48000", domain.ErrValidation)
	}

	language := req.LanguageCode
	if language == "" {
		language = defaultLanguageCode
	}
	if !supportedLanguages[language] {
		return nil, fmt.Errorf("%w: unsupported language_code %q", domain.ErrValidation, req.LanguageCode)
	}

	recognizeReq := &speechapi.RecognizeRequest{
		Config: &speechapi.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int64(sampleRate),
			LanguageCode:    language,
		},
		Audio: &speechapi.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(decoded),
		},
	}

	var resp *speechapi.RecognizeResponse
	err = retry.Do(ctx, s.retry, func(ctx context.Context) error {
		var recErr error
		resp, recErr = s.recognizer.Recognize(ctx, recognizeReq)
		return classifyAPIError(recErr)
	})
	if err != nil {
		middleware.TrackUpstream(upstreamName, "error")
		s.logger.Error("transcription failed", "error", err)
		return nil, &domain.UpstreamError{Message: "transcription failed"}
	}

	var parts []string
	var confidenceSum float64
	var confidenceCount int
	for _, res := range resp.Results {
		if len(res.Alternatives) == 0 {
			continue
		}
		top := res.Alternatives[0]
		if top.Transcript == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(top.Transcript))
		if top.Confidence > 0 {
			confidenceSum += top.Confidence
			confidenceCount++
		}
	}

	result := &services.TranscribeResult{
		Transcript: strings.Join(parts, " "),
	}
	if confidenceCount > 0 {
		result.Confidence = confidenceSum / float64(confidenceCount)
	}

	middleware.TrackUpstream(upstreamName, "ok")
	s.logger.Info("audio transcribed",
		"user_id", req.UserID,
		"language", language,
		"chars", len(result.Transcript),
	)
	return result, nil
}

// classifyAPIError marks non-retryable Google API errors as permanent.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code != http.StatusTooManyRequests && apiErr.Code < 500 {
			return retry.Permanent(err)
		}
	}
	return err
}
