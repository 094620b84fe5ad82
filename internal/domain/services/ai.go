package services

import (
	"context"

	"inkwell/internal/domain/models"
)

// AIAction identifies a text transformation preset.
type AIAction string

const (
	AIActionRewrite   AIAction = "rewrite"
	AIActionSummarize AIAction = "summarize"
	AIActionTitle     AIAction = "title"
	AIActionProofread AIAction = "proofread"
	AIActionExpand    AIAction = "expand"
	AIActionShorten   AIAction = "shorten"
)

// TransformRequest asks the generative API to transform note text.
type TransformRequest struct {
	UserID string      `json:"-"`
	Action AIAction    `json:"action"`
	Text   string      `json:"text"`
	Tone   models.Tone `json:"tone,omitempty"` // required for rewrite
}

// TransformResult is the post-processed model output.
type TransformResult struct {
	Action AIAction `json:"action"`
	Output string   `json:"output"`
	Model  string   `json:"model"`
}

// AIService bridges to the hosted generative-language API.
type AIService interface {
	Transform(ctx context.Context, req *TransformRequest) (*TransformResult, error)
}
