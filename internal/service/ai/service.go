package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/services"
	"inkwell/internal/middleware"
	"inkwell/internal/retry"
)

const upstreamName = "gemini"

// aiService implements the AIService interface over a GenerateClient.
type aiService struct {
	client   GenerateClient
	registry *Registry
	retry    retry.Options
	logger   *slog.Logger
}

// NewService creates the text-transformation service
func NewService(client GenerateClient, registry *Registry, logger *slog.Logger) services.AIService {
	opts := retry.DefaultOptions()
	opts.AttemptTimeout = DefaultGeminiTimeout
	opts.OnRetry = func(attempt int, err error) {
		middleware.TrackUpstreamRetry(upstreamName)
		logger.Warn("retrying generation", "attempt", attempt, "error", err)
	}
	return &aiService{
		client:   client,
		registry: registry,
		retry:    opts,
		logger:   logger,
	}
}

// Transform runs a preset transformation over the given text
func (s *aiService) Transform(ctx context.Context, req *services.TransformRequest) (*services.TransformResult, error) {
	preset, ok := s.registry.Get(req.Action)
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrValidation, req.Action)
	}
	if req.Text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	if len(req.Text) > config.MaxAIInputChars {
		return nil, fmt.Errorf("%w: text exceeds %d characters", domain.ErrValidation, config.MaxAIInputChars)
	}
	if preset.RequiresTone {
		if req.Tone == "" {
			return nil, fmt.Errorf("%w: tone is required for %s", domain.ErrValidation, req.Action)
		}
		if !models.ValidTone(req.Tone) {
			return nil, fmt.Errorf("%w: unknown tone %q", domain.ErrValidation, req.Tone)
		}
	}

	genReq := &GenerateRequest{
		SystemPrompt:    preset.Prompt(req.Tone),
		Text:            req.Text,
		Temperature:     preset.Temperature,
		MaxOutputTokens: preset.MaxOutputTokens,
	}

	var result *GenerateResult
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		var genErr error
		result, genErr = s.client.Generate(ctx, genReq)
		return classifyGenerateError(genErr)
	})
	if err != nil {
		var blocked *BlockedError
		if errors.As(err, &blocked) {
			middleware.TrackUpstream(upstreamName, "blocked")
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, blocked)
		}
		middleware.TrackUpstream(upstreamName, "error")
		s.logger.Error("generation failed", "action", req.Action, "error", err)
		return nil, &domain.UpstreamError{Message: "text transformation failed"}
	}

	middleware.TrackUpstream(upstreamName, "ok")
	s.logger.Info("text transformed",
		"action", req.Action,
		"user_id", req.UserID,
		"model", result.Model,
		"input_chars", len(req.Text),
	)

	return &services.TransformResult{
		Action: req.Action,
		Output: result.Text,
		Model:  result.Model,
	}, nil
}

// classifyGenerateError marks errors that retrying cannot fix.
func classifyGenerateError(err error) error {
	if err == nil {
		return nil
	}
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return retry.Permanent(err)
	}
	var status *StatusError
	if errors.As(err, &status) {
		// 429 and 5xx are transient; other 4xx will fail the same way again
		if status.Status != http.StatusTooManyRequests && status.Status < 500 {
			return retry.Permanent(err)
		}
	}
	return err
}
