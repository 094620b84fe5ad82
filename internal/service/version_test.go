package service

import (
	"context"
	"fmt"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/domain/services"
)

type versionEnv struct {
	notes    *fakeNoteRepo
	versions *fakeVersionRepo
	svc      services.VersionService
	noteSvc  services.NoteService
}

func newVersionEnv() *versionEnv {
	notes := newFakeNoteRepo()
	folders := newFakeFolderRepo()
	versions := newFakeVersionRepo()
	analyzer := NewContentAnalyzer()
	logger := discardLogger()
	return &versionEnv{
		notes:    notes,
		versions: versions,
		svc:      NewVersionService(versions, notes, fakeTxManager{}, analyzer, logger),
		noteSvc:  NewNoteService(notes, folders, versions, fakeTxManager{}, analyzer, logger),
	}
}

func TestListVersions_NewestFirst(t *testing.T) {
	env := newVersionEnv()
	note, _ := env.noteSvc.CreateNote(context.Background(), &services.CreateNoteRequest{
		UserID: "user-1", Title: "doc", Content: "<p>v1</p>",
	})
	for i := 2; i <= 4; i++ {
		content := fmt.Sprintf("<p>v%d</p>", i)
		if _, err := env.noteSvc.UpdateNote(context.Background(), note.ID, &services.UpdateNoteRequest{
			UserID: "user-1", Content: &content,
		}); err != nil {
			t.Fatalf("UpdateNote: %v", err)
		}
	}

	versions, err := env.svc.ListVersions(context.Background(), "user-1", note.ID, 0)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(versions))
	}
	// Snapshots hold the pre-update content: v3, v2, v1 newest first
	if versions[0].Content != "<p>v3</p>" || versions[2].Content != "<p>v1</p>" {
		t.Errorf("unexpected order: %q ... %q", versions[0].Content, versions[2].Content)
	}
}

func TestListVersions_UnknownNote(t *testing.T) {
	env := newVersionEnv()
	if _, err := env.svc.ListVersions(context.Background(), "user-1", "note-404", 0); err == nil {
		t.Error("expected error for unknown note")
	}
}

func TestListVersions_OtherUsersNote(t *testing.T) {
	env := newVersionEnv()
	note, _ := env.noteSvc.CreateNote(context.Background(), &services.CreateNoteRequest{
		UserID: "user-1", Title: "private",
	})
	if _, err := env.svc.ListVersions(context.Background(), "user-2", note.ID, 0); err == nil {
		t.Error("expected error when listing another user's versions")
	}
}

func TestRestoreVersion(t *testing.T) {
	env := newVersionEnv()
	note, _ := env.noteSvc.CreateNote(context.Background(), &services.CreateNoteRequest{
		UserID: "user-1", Title: "doc", Content: "<p>original text here</p>",
	})
	newContent := "<p>rewritten</p>"
	if _, err := env.noteSvc.UpdateNote(context.Background(), note.ID, &services.UpdateNoteRequest{
		UserID: "user-1", Content: &newContent,
	}); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	versions, _ := env.svc.ListVersions(context.Background(), "user-1", note.ID, 0)
	if len(versions) != 1 {
		t.Fatalf("expected 1 version, got %d", len(versions))
	}

	restored, err := env.svc.RestoreVersion(context.Background(), "user-1", note.ID, versions[0].ID)
	if err != nil {
		t.Fatalf("RestoreVersion: %v", err)
	}
	if restored.Content != "<p>original text here</p>" {
		t.Errorf("content not restored: %q", restored.Content)
	}
	if restored.PlainText != "original text here" {
		t.Errorf("plain text not re-derived: %q", restored.PlainText)
	}
	if restored.WordCount != 3 {
		t.Errorf("word count = %d, want 3", restored.WordCount)
	}

	// The pre-restore state was snapshotted as a manual save
	after, _ := env.svc.ListVersions(context.Background(), "user-1", note.ID, 0)
	if len(after) != 2 {
		t.Fatalf("expected 2 versions after restore, got %d", len(after))
	}
	if after[0].Content != "<p>rewritten</p>" {
		t.Errorf("newest version should hold the pre-restore content, got %q", after[0].Content)
	}
	if after[0].AutoSave {
		t.Error("restore snapshot must be a manual save")
	}
}

func TestRestoreVersion_WrongNote(t *testing.T) {
	env := newVersionEnv()
	noteA, _ := env.noteSvc.CreateNote(context.Background(), &services.CreateNoteRequest{
		UserID: "user-1", Title: "a", Content: "<p>a1</p>",
	})
	noteB, _ := env.noteSvc.CreateNote(context.Background(), &services.CreateNoteRequest{
		UserID: "user-1", Title: "b", Content: "<p>b1</p>",
	})
	a2 := "<p>a2</p>"
	if _, err := env.noteSvc.UpdateNote(context.Background(), noteA.ID, &services.UpdateNoteRequest{
		UserID: "user-1", Content: &a2,
	}); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	versions, _ := env.svc.ListVersions(context.Background(), "user-1", noteA.ID, 0)

	if _, err := env.svc.RestoreVersion(context.Background(), "user-1", noteB.ID, versions[0].ID); err == nil {
		t.Error("expected error restoring a version onto a different note")
	}
}

func TestVersionPruning_EvictsAutoSavesFirst(t *testing.T) {
	env := newVersionEnv()
	note, _ := env.noteSvc.CreateNote(context.Background(), &services.CreateNoteRequest{
		UserID: "user-1", Title: "busy", Content: "<p>v0</p>",
	})

	// One manual save early, then enough auto-saves to overflow the cap
	manual := "<p>manual save</p>"
	if _, err := env.noteSvc.UpdateNote(context.Background(), note.ID, &services.UpdateNoteRequest{
		UserID: "user-1", Content: &manual,
	}); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	for i := 0; i < config.MaxVersionsPerNote+5; i++ {
		content := fmt.Sprintf("<p>auto %d</p>", i)
		if _, err := env.noteSvc.UpdateNote(context.Background(), note.ID, &services.UpdateNoteRequest{
			UserID: "user-1", Content: &content, AutoSave: true,
		}); err != nil {
			t.Fatalf("UpdateNote: %v", err)
		}
	}

	versions, _ := env.svc.ListVersions(context.Background(), "user-1", note.ID, 0)
	if len(versions) > config.MaxVersionsPerNote {
		t.Fatalf("cap not enforced: %d versions", len(versions))
	}

	// The manual save (of the original v0 content) must have survived
	foundManual := false
	for _, v := range versions {
		if !v.AutoSave {
			foundManual = true
		}
	}
	if !foundManual {
		t.Error("manual save was evicted before auto-saves")
	}
}
