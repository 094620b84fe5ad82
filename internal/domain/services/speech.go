package services

import "context"

// TranscribeRequest carries recorded audio for speech recognition.
type TranscribeRequest struct {
	UserID       string `json:"-"`
	Audio        string `json:"audio"` // base64
	Encoding     string `json:"encoding,omitempty"`
	SampleRate   int    `json:"sample_rate,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// TranscribeResult is the joined transcript with average confidence.
type TranscribeResult struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// SpeechService bridges to the cloud speech-recognition API.
type SpeechService interface {
	Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResult, error)
}
