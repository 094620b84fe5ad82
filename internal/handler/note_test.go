package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/services"
	"inkwell/internal/httputil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeNoteService records calls and returns canned values.
type fakeNoteService struct {
	note       *models.Note
	list       *models.NoteListResponse
	export     *services.NoteExport
	err        error
	lastFilter *models.NoteFilter
	lastCreate *services.CreateNoteRequest
	lastUpdate *services.UpdateNoteRequest
}

func (f *fakeNoteService) CreateNote(ctx context.Context, req *services.CreateNoteRequest) (*models.Note, error) {
	f.lastCreate = req
	return f.note, f.err
}

func (f *fakeNoteService) GetNote(ctx context.Context, userID, id string) (*models.Note, error) {
	return f.note, f.err
}

func (f *fakeNoteService) UpdateNote(ctx context.Context, id string, req *services.UpdateNoteRequest) (*models.Note, error) {
	f.lastUpdate = req
	return f.note, f.err
}

func (f *fakeNoteService) DeleteNote(ctx context.Context, userID, id string) error {
	return f.err
}

func (f *fakeNoteService) ListNotes(ctx context.Context, userID string, filter *models.NoteFilter) (*models.NoteListResponse, error) {
	f.lastFilter = filter
	return f.list, f.err
}

func (f *fakeNoteService) ExportNote(ctx context.Context, userID, id string, format services.ExportFormat) (*services.NoteExport, error) {
	return f.export, f.err
}

// newNoteMux wires the note routes the way the server does.
func newNoteMux(svc services.NoteService) *http.ServeMux {
	h := NewNoteHandler(svc, discardLogger())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/notes", h.CreateNote)
	mux.HandleFunc("GET /api/notes", h.ListNotes)
	mux.HandleFunc("GET /api/notes/{id}", h.GetNote)
	mux.HandleFunc("PATCH /api/notes/{id}", h.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.DeleteNote)
	mux.HandleFunc("GET /api/notes/{id}/export", h.ExportNote)
	return mux
}

func doRequest(mux *http.ServeMux, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req = httputil.WithUserID(req, "user-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateNoteHandler(t *testing.T) {
	svc := &fakeNoteService{note: &models.Note{ID: "note-1", Title: "hi"}}
	mux := newNoteMux(svc)

	rec := doRequest(mux, "POST", "/api/notes", []byte(`{"title":"hi","content":"<p>x</p>"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastCreate.UserID != "user-1" {
		t.Errorf("user id not injected from context: %q", svc.lastCreate.UserID)
	}
	var got models.Note
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "note-1" {
		t.Errorf("returned note id = %q", got.ID)
	}
}

func TestCreateNoteHandler_BadJSON(t *testing.T) {
	mux := newNoteMux(&fakeNoteService{})
	rec := doRequest(mux, "POST", "/api/notes", []byte(`{"title":`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestUpdateNoteHandler_TriStateFolder(t *testing.T) {
	svc := &fakeNoteService{note: &models.Note{ID: "note-1"}}
	mux := newNoteMux(svc)

	// null folder_id moves to root
	rec := doRequest(mux, "PATCH", "/api/notes/note-1", []byte(`{"folder_id":null,"title":"t"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !svc.lastUpdate.FolderID.Present || svc.lastUpdate.FolderID.Value != nil {
		t.Errorf("null folder_id not decoded as present-nil: %+v", svc.lastUpdate.FolderID)
	}

	// absent folder_id keeps placement
	rec = doRequest(mux, "PATCH", "/api/notes/note-1", []byte(`{"title":"t"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastUpdate.FolderID.Present {
		t.Error("absent folder_id decoded as present")
	}
}

func TestNoteHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &domain.NotFoundError{Message: "nope"}, http.StatusNotFound},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"conflict", &domain.ConflictError{Message: "dupe"}, http.StatusConflict},
		{"upstream", &domain.UpstreamError{Message: "bad gateway"}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newNoteMux(&fakeNoteService{err: tt.err})
			rec := doRequest(mux, "GET", "/api/notes/note-1", nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestListNotesHandler_Filters(t *testing.T) {
	svc := &fakeNoteService{list: &models.NoteListResponse{Notes: []models.Note{}, Total: 0}}
	mux := newNoteMux(svc)

	rec := doRequest(mux, "GET", "/api/notes?folder_id=f-1&tag=work&tone=formal&pinned=true&q=milk&limit=10&offset=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	f := svc.lastFilter
	if f.FolderID == nil || *f.FolderID != "f-1" {
		t.Error("folder_id filter not parsed")
	}
	if f.Tag != "work" || f.Tone != models.ToneFormal || f.Search != "milk" {
		t.Errorf("filter = %+v", f)
	}
	if f.Pinned == nil || !*f.Pinned {
		t.Error("pinned filter not parsed")
	}
	if f.Limit != 10 || f.Offset != 5 {
		t.Errorf("limit/offset = %d/%d", f.Limit, f.Offset)
	}
}

func TestListNotesHandler_UnfiledSelector(t *testing.T) {
	svc := &fakeNoteService{list: &models.NoteListResponse{}}
	mux := newNoteMux(svc)

	rec := doRequest(mux, "GET", "/api/notes?folder_id=", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastFilter.FolderID == nil || *svc.lastFilter.FolderID != "" {
		t.Error("empty folder_id should select unfiled notes")
	}

	rec = doRequest(mux, "GET", "/api/notes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.lastFilter.FolderID != nil {
		t.Error("absent folder_id must not filter by folder")
	}
}

func TestListNotesHandler_BadParams(t *testing.T) {
	mux := newNoteMux(&fakeNoteService{list: &models.NoteListResponse{}})

	for _, path := range []string{
		"/api/notes?pinned=maybe",
		"/api/notes?limit=-1",
		"/api/notes?offset=x",
	} {
		rec := doRequest(mux, "GET", path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestDeleteNoteHandler(t *testing.T) {
	mux := newNoteMux(&fakeNoteService{})
	rec := doRequest(mux, "DELETE", "/api/notes/note-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestExportNoteHandler(t *testing.T) {
	svc := &fakeNoteService{export: &services.NoteExport{
		Title:    "doc",
		Format:   services.ExportMarkdown,
		Body:     "# doc",
		Filename: "doc.md",
	}}
	mux := newNoteMux(svc)

	rec := doRequest(mux, "GET", "/api/notes/note-1/export?format=markdown", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got services.NoteExport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Body != "# doc" || got.Filename != "doc.md" {
		t.Errorf("export = %+v", got)
	}
}
