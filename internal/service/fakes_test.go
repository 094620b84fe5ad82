package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// In-memory repository fakes shared by the service tests.

type fakeNoteRepo struct {
	notes  map[string]*models.Note
	nextID int
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[string]*models.Note)}
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *models.Note) error {
	r.nextID++
	note.ID = fmt.Sprintf("note-%d", r.nextID)
	clone := *note
	r.notes[note.ID] = &clone
	return nil
}

func (r *fakeNoteRepo) GetByID(ctx context.Context, id, userID string) (*models.Note, error) {
	note, ok := r.notes[id]
	if !ok || note.UserID != userID {
		return nil, &domain.NotFoundError{Message: "note not found"}
	}
	clone := *note
	return &clone, nil
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *models.Note) error {
	existing, ok := r.notes[note.ID]
	if !ok || existing.UserID != note.UserID {
		return &domain.NotFoundError{Message: "note not found"}
	}
	clone := *note
	r.notes[note.ID] = &clone
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, id, userID string) error {
	note, ok := r.notes[id]
	if !ok || note.UserID != userID {
		return &domain.NotFoundError{Message: "note not found"}
	}
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepo) DeleteAllByFolder(ctx context.Context, folderID, userID string) ([]string, error) {
	var ids []string
	for id, note := range r.notes {
		if note.UserID == userID && note.FolderID != nil && *note.FolderID == folderID {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		delete(r.notes, id)
	}
	return ids, nil
}

func (r *fakeNoteRepo) List(ctx context.Context, userID string, filter *models.NoteFilter) ([]models.Note, int, error) {
	var out []models.Note
	for _, note := range r.notes {
		if note.UserID != userID {
			continue
		}
		if filter.FolderID != nil {
			if *filter.FolderID == "" {
				if note.FolderID != nil {
					continue
				}
			} else if note.FolderID == nil || *note.FolderID != *filter.FolderID {
				continue
			}
		}
		if filter.Tag != "" && !contains(note.Tags, filter.Tag) {
			continue
		}
		if filter.Tone != "" && note.Tone != filter.Tone {
			continue
		}
		if filter.Pinned != nil && note.Pinned != *filter.Pinned {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(note.Title), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(note.PlainText), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *note)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

type fakeFolderRepo struct {
	folders map[string]*models.Folder
	nextID  int
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	for _, f := range r.folders {
		if f.UserID == folder.UserID && f.Name == folder.Name {
			return &domain.ConflictError{
				Message:      "folder already exists",
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
	}
	r.nextID++
	folder.ID = fmt.Sprintf("folder-%d", r.nextID)
	clone := *folder
	r.folders[folder.ID] = &clone
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id, userID string) (*models.Folder, error) {
	folder, ok := r.folders[id]
	if !ok || folder.UserID != userID {
		return nil, &domain.NotFoundError{Message: "folder not found"}
	}
	clone := *folder
	return &clone, nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	existing, ok := r.folders[folder.ID]
	if !ok || existing.UserID != folder.UserID {
		return &domain.NotFoundError{Message: "folder not found"}
	}
	clone := *folder
	r.folders[folder.ID] = &clone
	return nil
}

func (r *fakeFolderRepo) Delete(ctx context.Context, id, userID string) error {
	folder, ok := r.folders[id]
	if !ok || folder.UserID != userID {
		return &domain.NotFoundError{Message: "folder not found"}
	}
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) List(ctx context.Context, userID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, folder := range r.folders {
		if folder.UserID == userID {
			out = append(out, *folder)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *fakeFolderRepo) IncrementNoteCount(ctx context.Context, id, userID string, delta int) error {
	folder, ok := r.folders[id]
	if !ok || folder.UserID != userID {
		return &domain.NotFoundError{Message: "folder not found"}
	}
	folder.NoteCount += delta
	if folder.NoteCount < 0 {
		folder.NoteCount = 0
	}
	return nil
}

func (r *fakeFolderRepo) UpdateSortOrder(ctx context.Context, id, userID string, sortOrder int) error {
	folder, ok := r.folders[id]
	if !ok || folder.UserID != userID {
		return &domain.NotFoundError{Message: "folder not found"}
	}
	folder.SortOrder = sortOrder
	return nil
}

func (r *fakeFolderRepo) MaxSortOrder(ctx context.Context, userID string) (int, error) {
	max := -1
	for _, folder := range r.folders {
		if folder.UserID == userID && folder.SortOrder > max {
			max = folder.SortOrder
		}
	}
	return max, nil
}

type fakeVersionRepo struct {
	versions map[string]*models.NoteVersion
	nextID   int
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: make(map[string]*models.NoteVersion)}
}

func (r *fakeVersionRepo) Create(ctx context.Context, version *models.NoteVersion) error {
	r.nextID++
	version.ID = fmt.Sprintf("version-%d", r.nextID)
	clone := *version
	r.versions[version.ID] = &clone
	return nil
}

func (r *fakeVersionRepo) GetByID(ctx context.Context, id, userID string) (*models.NoteVersion, error) {
	version, ok := r.versions[id]
	if !ok || version.UserID != userID {
		return nil, &domain.NotFoundError{Message: "version not found"}
	}
	clone := *version
	return &clone, nil
}

func (r *fakeVersionRepo) ListByNote(ctx context.Context, noteID, userID string, limit int) ([]models.NoteVersion, error) {
	var out []models.NoteVersion
	for _, version := range r.versions {
		if version.NoteID == noteID && version.UserID == userID {
			out = append(out, *version)
		}
	}
	// Newest first; ids are sequential in the fake
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeVersionRepo) DeleteByNote(ctx context.Context, noteID, userID string) error {
	for id, version := range r.versions {
		if version.NoteID == noteID && version.UserID == userID {
			delete(r.versions, id)
		}
	}
	return nil
}

func (r *fakeVersionRepo) Prune(ctx context.Context, noteID, userID string, keep int) error {
	all, _ := r.ListByNote(ctx, noteID, userID, 0)
	// Auto-saves rank behind manual saves for retention
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].AutoSave != all[j].AutoSave {
			return !all[i].AutoSave
		}
		return all[i].ID > all[j].ID
	})
	for i := keep; i < len(all); i++ {
		delete(r.versions, all[i].ID)
	}
	return nil
}

// fakeTxManager runs the function directly, without a transaction.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
