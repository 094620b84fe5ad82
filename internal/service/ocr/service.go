// Package ocr extracts text from captured images through the Cloud
// Vision images:annotate API.
package ocr

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
	vision "google.golang.org/api/vision/v1"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/services"
	"inkwell/internal/middleware"
	"inkwell/internal/retry"
)

const (
	upstreamName = "vision"

	// annotateTimeout bounds each annotate attempt
	annotateTimeout = 60 * time.Second
)

// allowedImageTypes are the media types the OCR endpoint accepts.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// Annotator abstracts the Vision call for testing.
type Annotator interface {
	Annotate(ctx context.Context, imageContent string) (*vision.AnnotateImageResponse, error)
}

// visionAnnotator calls the hosted Vision API.
type visionAnnotator struct {
	service *vision.Service
}

// NewAnnotator builds the hosted Vision annotator
func NewAnnotator(ctx context.Context, apiKey string) (Annotator, error) {
	svc, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create vision client: %w", err)
	}
	return &visionAnnotator{service: svc}, nil
}

func (a *visionAnnotator) Annotate(ctx context.Context, imageContent string) (*vision.AnnotateImageResponse, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{
			{
				Image:    &vision.Image{Content: imageContent},
				Features: []*vision.Feature{{Type: "DOCUMENT_TEXT_DETECTION"}},
			},
		},
	}
	resp, err := a.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("empty annotation response")
	}
	return resp.Responses[0], nil
}

// ocrService implements the OCRService interface.
type ocrService struct {
	annotator Annotator
	retry     retry.Options
	logger    *slog.Logger
}

// NewService creates the OCR service
func NewService(annotator Annotator, logger *slog.Logger) services.OCRService {
	opts := retry.DefaultOptions()
	opts.AttemptTimeout = annotateTimeout
	opts.OnRetry = func(attempt int, err error) {
		middleware.TrackUpstreamRetry(upstreamName)
		logger.Warn("retrying text extraction", "attempt", attempt, "error", err)
	}
	return &ocrService{annotator: annotator, retry: opts, logger: logger}
}

// ExtractText runs document text detection over a base64 image
func (s *ocrService) ExtractText(ctx context.Context, req *services.ExtractTextRequest) (*services.ExtractTextResult, error) {
	content, err := decodeImage(req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var annotation *vision.AnnotateImageResponse
	err = retry.Do(ctx, s.retry, func(ctx context.Context) error {
		var annErr error
		annotation, annErr = s.annotator.Annotate(ctx, content)
		return classifyAPIError(annErr)
	})
	if err != nil {
		middleware.TrackUpstream(upstreamName, "error")
		s.logger.Error("text extraction failed", "error", err)
		return nil, &domain.UpstreamError{Message: "text extraction failed"}
	}

	if annotation.Error != nil {
		middleware.TrackUpstream(upstreamName, "error")
		return nil, &domain.UpstreamError{Message: fmt.Sprintf("text extraction failed: %s", annotation.Error.Message)}
	}

	result := &services.ExtractTextResult{}
	if annotation.FullTextAnnotation != nil {
		result.Text = annotation.FullTextAnnotation.Text
		for _, page := range annotation.FullTextAnnotation.Pages {
			result.Pages = append(result.Pages, services.Page{Confidence: page.Confidence})
		}
	}

	middleware.TrackUpstream(upstreamName, "ok")
	s.logger.Info("text extracted",
		"user_id", req.UserID,
		"pages", len(result.Pages),
		"chars", len(result.Text),
	)
	return result, nil
}

// decodeImage validates a base64 or data-URI payload and returns the
// standard-base64 content Vision expects.
func decodeImage(image string) (string, error) {
	if image == "" {
		return "", fmt.Errorf("image is required")
	}

	payload := image
	if strings.HasPrefix(image, "data:") {
		meta, rest, ok := strings.Cut(image, ",")
		if !ok {
			return "", fmt.Errorf("malformed data URI")
		}
		mediaType := strings.TrimPrefix(meta, "data:")
		mediaType, _, _ = strings.Cut(mediaType, ";")
		if !allowedImageTypes[mediaType] {
			return "", fmt.Errorf("unsupported image type %q", mediaType)
		}
		payload = rest
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("image is not valid base64: %v", err)
	}
	if len(decoded) == 0 {
		return "", fmt.Errorf("image is empty")
	}
	if len(decoded) > config.MaxOCRImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", config.MaxOCRImageBytes)
	}
	if !strings.HasPrefix(image, "data:") {
		// HEIC sniffs as octet-stream, so only reject positively known
		// foreign types
		mediaType := http.DetectContentType(decoded)
		if !allowedImageTypes[mediaType] && mediaType != "application/octet-stream" {
			return "", fmt.Errorf("unsupported image type %q", mediaType)
		}
	}

	return base64.StdEncoding.EncodeToString(decoded), nil
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
