package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"google.golang.org/api/googleapi"
	vision "google.golang.org/api/vision/v1"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// pngPayload is a minimal buffer carrying the PNG signature so content
// sniffing identifies it.
func pngPayload(size int) []byte {
	buf := make([]byte, size)
	copy(buf, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	return buf
}

type fakeAnnotator struct {
	resp        *vision.AnnotateImageResponse
	err         error
	calls       atomic.Int32
	hadDeadline bool
}

func (f *fakeAnnotator) Annotate(ctx context.Context, imageContent string) (*vision.AnnotateImageResponse, error) {
	f.calls.Add(1)
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestExtractText(t *testing.T) {
	annotator := &fakeAnnotator{
		resp: &vision.AnnotateImageResponse{
			FullTextAnnotation: &vision.TextAnnotation{
				Text: "Milk\nEggs\nBread",
				Pages: []*vision.Page{
					{Confidence: 0.97},
				},
			},
		},
	}
	svc := NewService(annotator, discardLogger())

	result, err := svc.ExtractText(context.Background(), &services.ExtractTextRequest{
		UserID: "user-1",
		Image:  base64.StdEncoding.EncodeToString(pngPayload(64)),
	})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if result.Text != "Milk\nEggs\nBread" {
		t.Errorf("text = %q", result.Text)
	}
	if len(result.Pages) != 1 || result.Pages[0].Confidence != 0.97 {
		t.Errorf("pages = %+v", result.Pages)
	}
}

func TestExtractText_AttemptsAreDeadlineBounded(t *testing.T) {
	annotator := &fakeAnnotator{resp: &vision.AnnotateImageResponse{}}
	svc := NewService(annotator, discardLogger())

	_, err := svc.ExtractText(context.Background(), &services.ExtractTextRequest{
		UserID: "user-1",
		Image:  base64.StdEncoding.EncodeToString(pngPayload(64)),
	})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !annotator.hadDeadline {
		t.Error("annotate attempt should run under a deadline")
	}
}

func TestExtractText_DataURI(t *testing.T) {
	annotator := &fakeAnnotator{
		resp: &vision.AnnotateImageResponse{
			FullTextAnnotation: &vision.TextAnnotation{Text: "hello"},
		},
	}
	svc := NewService(annotator, discardLogger())

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPayload(64))
	result, err := svc.ExtractText(context.Background(), &services.ExtractTextRequest{Image: uri})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if result.Text != "hello" {
		t.Errorf("text = %q", result.Text)
	}
}

func TestExtractText_Validation(t *testing.T) {
	svc := NewService(&fakeAnnotator{}, discardLogger())

	tests := []struct {
		name  string
		image string
	}{
		{"empty", ""},
		{"not base64", "!!!not-base64!!!"},
		{"malformed data uri", "data:image/png;base64"},
		{"disallowed type", "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4"))},
		{"foreign sniffed type", base64.StdEncoding.EncodeToString([]byte("<html><body>hi</body></html>"))},
		{"oversized", "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPayload(config.MaxOCRImageBytes+1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ExtractText(context.Background(), &services.ExtractTextRequest{Image: tt.image})
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestExtractText_AnnotationError(t *testing.T) {
	annotator := &fakeAnnotator{
		resp: &vision.AnnotateImageResponse{
			Error: &vision.Status{Message: "image too blurry"},
		},
	}
	svc := NewService(annotator, discardLogger())

	_, err := svc.ExtractText(context.Background(), &services.ExtractTextRequest{
		Image: base64.StdEncoding.EncodeToString(pngPayload(64)),
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "blurry") {
		t.Errorf("annotation error message lost: %v", err)
	}
}

func TestExtractText_PermanentAPIErrorNotRetried(t *testing.T) {
	annotator := &fakeAnnotator{
		err: &googleapi.Error{Code: 400, Message: "bad image"},
	}
	svc := NewService(annotator, discardLogger())

	_, err := svc.ExtractText(context.Background(), &services.ExtractTextRequest{
		Image: base64.StdEncoding.EncodeToString(pngPayload(64)),
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
	if annotator.calls.Load() != 1 {
		t.Errorf("4xx must not be retried, got %d calls", annotator.calls.Load())
	}
}

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		permanent bool
	}{
		{"nil", nil, false},
		{"network", errors.New("timeout"), false},
		{"api 500", &googleapi.Error{Code: 500}, false},
		{"api 429", &googleapi.Error{Code: 429}, false},
		{"api 400", &googleapi.Error{Code: 400}, true},
		{"api 401", &googleapi.Error{Code: 401}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAPIError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("classify(nil) = %v", got)
				}
				return
			}
			isPermanent := got != tt.err
			if isPermanent != tt.permanent {
				t.Errorf("permanent = %v, want %v", isPermanent, tt.permanent)
			}
		})
	}
}
