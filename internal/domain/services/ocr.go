package services

import "context"

// ExtractTextRequest carries an image for OCR. Image is base64, with or
// without a data-URI prefix.
type ExtractTextRequest struct {
	UserID string `json:"-"`
	Image  string `json:"image"`
}

// Page carries the detection confidence of a single scanned page.
type Page struct {
	Confidence float64 `json:"confidence"`
}

// ExtractTextResult is the OCR output: the full document text plus
// per-page confidence.
type ExtractTextResult struct {
	Text  string `json:"text"`
	Pages []Page `json:"pages,omitempty"`
}

// OCRService bridges to the cloud vision text-detection API.
type OCRService interface {
	ExtractText(ctx context.Context, req *ExtractTextRequest) (*ExtractTextResult, error)
}
