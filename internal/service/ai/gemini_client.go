package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultGeminiBaseURL is the generative-language API endpoint
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultGeminiTimeout is the default HTTP timeout for generate calls
	DefaultGeminiTimeout = 60 * time.Second
)

// GenerateRequest is a single-turn generation call.
type GenerateRequest struct {
	SystemPrompt    string
	Text            string
	Temperature     float64
	MaxOutputTokens int
}

// GenerateResult is the post-processed model output.
type GenerateResult struct {
	Text         string
	Model        string
	FinishReason string
}

// StatusError carries the upstream HTTP status so callers can decide
// whether the failure is retryable.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Body)
}

// BlockedError indicates the model refused the input or output on
// safety grounds. Not retryable.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("generation blocked: %s", e.Reason)
}

// GenerateClient abstracts the generative API for testing.
type GenerateClient interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
}

// GeminiClient calls the Gemini generateContent REST API.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a client for the hosted API.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return NewGeminiClientWithConfig(apiKey, model, DefaultGeminiBaseURL, DefaultGeminiTimeout)
}

// NewGeminiClientWithConfig creates a client with custom endpoint and
// timeout, used by tests to point at a local server.
func NewGeminiClientWithConfig(apiKey, model, baseURL string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate implements GenerateClient.
func (c *GeminiClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Text}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}
	if req.SystemPrompt != "" {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemPrompt}},
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if geminiResp.PromptFeedback != nil && geminiResp.PromptFeedback.BlockReason != "" {
		return nil, &BlockedError{Reason: geminiResp.PromptFeedback.BlockReason}
	}
	if len(geminiResp.Candidates) == 0 {
		return nil, fmt.Errorf("response contains no candidates")
	}

	candidate := geminiResp.Candidates[0]
	if candidate.FinishReason == "SAFETY" || candidate.FinishReason == "PROHIBITED_CONTENT" {
		return nil, &BlockedError{Reason: candidate.FinishReason}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return nil, fmt.Errorf("response contains no text (finish reason %q)", candidate.FinishReason)
	}

	model := geminiResp.ModelVersion
	if model == "" {
		model = c.model
	}

	return &GenerateResult{
		Text:         text,
		Model:        model,
		FinishReason: candidate.FinishReason,
	}, nil
}

// Wire types for the generateContent endpoint

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *geminiFeedback   `json:"promptFeedback,omitempty"`
	ModelVersion   string            `json:"modelVersion,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}
