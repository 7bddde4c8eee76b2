package models_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"notevault/models"
	"notevault/remote"
)

func TestCreateCategoryWritesRemoteFirst(t *testing.T) {
	f := setupCloudStore(t)
	ctx := context.Background()

	cat, err := f.store.CreateCategory(ctx, models.CategoryInput{Title: "  organic chemistry "})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.Title != "ORGANIC CHEMISTRY" {
		t.Errorf("expected upper-cased title, got %q", cat.Title)
	}
	if cat.ID == "" || cat.CreatedAt == 0 {
		t.Errorf("expected id and createdAt, got %+v", cat)
	}

	docs := f.remote.Documents(models.CollectionModules)
	if len(docs) != 1 || docs[0].ID != cat.ID {
		t.Fatalf("expected category in remote store, got %+v", docs)
	}
	if _, err := f.store.Category(cat.ID); err != nil {
		t.Errorf("category not in memory: %v", err)
	}
	if f.local.Has(models.LocalKeyModules) {
		t.Error("cloud mode must not write local blobs")
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	f := setupCloudStore(t)
	_, err := f.store.CreateCategory(context.Background(), models.CategoryInput{Title: "   "})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.remote.Batches()) != 0 {
		t.Error("invalid input reached the remote store")
	}
}

func TestCreateCategoryRemoteFailure(t *testing.T) {
	f := setupCloudStore(t)
	f.remote.FailBatches(errors.New("network down"))

	if _, err := f.store.CreateCategory(context.Background(), models.CategoryInput{Title: "math"}); err == nil {
		t.Fatal("expected error")
	}
	if len(f.store.Categories()) != 0 {
		t.Error("failed write must not change memory")
	}
	if got := f.store.Status().Cloud; got != models.StatusError {
		t.Errorf("expected status error, got %s", got)
	}
}

func TestIDsAreUniqueWithinOneMillisecond(t *testing.T) {
	f := setupCloudStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		cat, err := f.store.CreateCategory(ctx, models.CategoryInput{Title: "same instant"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[cat.ID] {
			t.Fatalf("duplicate id %s", cat.ID)
		}
		seen[cat.ID] = true
	}
}

func TestCreateNote(t *testing.T) {
	f := setupCloudStore(t)
	ctx := context.Background()
	cat, err := f.store.CreateCategory(ctx, models.CategoryInput{Title: "history"})
	if err != nil {
		t.Fatal(err)
	}

	note, err := f.store.CreateNote(ctx, models.NoteInput{
		ModuleID: cat.ID,
		Content:  "the treaty of westphalia ended the thirty years war in 1648\nmore detail",
		Tags:     []string{"#europe", "Europe", " treaties "},
	})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.Title != "THE TREATY OF WESTPHALIA ENDED THE THIRT" {
		t.Errorf("unexpected derived title %q", note.Title)
	}
	if note.Kind != models.KindText {
		t.Errorf("expected default kind text, got %q", note.Kind)
	}
	if len(note.Tags) != 2 || note.Tags[0] != "europe" || note.Tags[1] != "treaties" {
		t.Errorf("unexpected tags %v", note.Tags)
	}
	if len(f.remote.Documents(models.CollectionItems)) != 1 {
		t.Error("note not written remotely")
	}
}

func TestCreateNoteUnknownCategory(t *testing.T) {
	f := setupCloudStore(t)
	_, err := f.store.CreateNote(context.Background(), models.NoteInput{ModuleID: "missing", Content: "x"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateNoteValidation(t *testing.T) {
	f := setupCloudStore(t)
	cases := []struct {
		name  string
		in    models.NoteInput
		field string
	}{
		{"no category", models.NoteInput{Content: "x"}, "moduleId"},
		{"no content", models.NoteInput{ModuleID: "m", Content: "  "}, "content"},
		{"bad kind", models.NoteInput{ModuleID: "m", Content: "x", Kind: "poem"}, "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.store.CreateNote(context.Background(), tc.in)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}
}

func TestUpdateNote(t *testing.T) {
	f := setupCloudStore(t)
	ctx := context.Background()
	cat, _ := f.store.CreateCategory(ctx, models.CategoryInput{Title: "art"})
	note, err := f.store.CreateNote(ctx, models.NoteInput{ModuleID: cat.ID, Title: "Monet", Content: "water lilies"})
	if err != nil {
		t.Fatal(err)
	}

	content := "haystacks"
	tags := []string{"impressionism"}
	updated, err := f.store.UpdateNote(ctx, note.ID, models.NoteUpdate{Content: &content, Tags: &tags})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Content != "haystacks" || updated.Title != "Monet" {
		t.Errorf("unexpected update result %+v", updated)
	}
	if updated.CreatedAt != note.CreatedAt || updated.ID != note.ID {
		t.Error("update must keep id and createdAt")
	}

	empty := " "
	if _, err := f.store.UpdateNote(ctx, note.ID, models.NoteUpdate{Content: &empty}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error for empty content, got %v", err)
	}
	if _, err := f.store.UpdateNote(ctx, "nope", models.NoteUpdate{Content: &content}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRenameCategory(t *testing.T) {
	f := setupCloudStore(t)
	ctx := context.Background()
	cat, _ := f.store.CreateCategory(ctx, models.CategoryInput{Title: "bio"})

	renamed, err := f.store.RenameCategory(ctx, cat.ID, models.CategoryInput{Title: "biology"})
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Title != "BIOLOGY" || renamed.CreatedAt != cat.CreatedAt {
		t.Errorf("unexpected rename result %+v", renamed)
	}
	if _, err := f.store.RenameCategory(ctx, "missing", models.CategoryInput{Title: "x"}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeleteCategoryKeepsNotes(t *testing.T) {
	f := setupCloudStore(t)
	ctx := context.Background()
	keep, _ := f.store.CreateCategory(ctx, models.CategoryInput{Title: "keep"})
	gone, _ := f.store.CreateCategory(ctx, models.CategoryInput{Title: "gone"})
	orphan, _ := f.store.CreateNote(ctx, models.NoteInput{ModuleID: gone.ID, Content: "orphan"})
	other, _ := f.store.CreateNote(ctx, models.NoteInput{ModuleID: keep.ID, Content: "other"})

	if err := f.store.DeleteCategory(ctx, gone.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	if _, err := f.store.Category(gone.ID); !errors.Is(err, models.ErrNotFound) {
		t.Error("category still in memory")
	}
	if _, err := f.store.Note(orphan.ID); err != nil {
		t.Errorf("note of deleted category was removed: %v", err)
	}
	deletes := f.remote.Deletes()
	if len(deletes) != 1 || deletes[0] != (remote.DeleteCall{Collection: models.CollectionModules, ID: gone.ID}) {
		t.Errorf("expected exactly one remote category delete, got %+v", deletes)
	}

	uncategorized := f.store.Notes(models.NoteFilter{ModuleID: models.UncategorizedModule})
	ids := noteIDs(uncategorized)
	if !ids[orphan.ID] || ids[other.ID] {
		t.Errorf("expected only the orphan under uncategorized, got %+v", uncategorized)
	}
}

func TestDeleteUnknownRecord(t *testing.T) {
	f := setupCloudStore(t)
	ctx := context.Background()
	if err := f.store.DeleteNote(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := f.store.DeleteCategory(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if len(f.remote.Deletes()) != 0 {
		t.Error("unknown ids must not reach the remote store")
	}
}

func TestDeleteRemoteFailureKeepsRecord(t *testing.T) {
	f := setupCloudStore(t)
	ctx := context.Background()
	cat, _ := f.store.CreateCategory(ctx, models.CategoryInput{Title: "x"})
	note, _ := f.store.CreateNote(ctx, models.NoteInput{ModuleID: cat.ID, Content: "y"})

	f.remote.FailDeletes(errors.New("offline"))
	if err := f.store.DeleteNote(ctx, note.ID); err == nil {
		t.Fatal("expected error")
	}
	if _, err := f.store.Note(note.ID); err != nil {
		t.Error("note removed although the remote delete failed")
	}
}

func TestDeleteRemovesLocalCopy(t *testing.T) {
	f := setupCloudStore(t)
	seedLocal(t, f.local,
		[]models.Category{{ID: "c", Title: "C", CreatedAt: 1}},
		[]models.Note{
			{ID: "n1", ModuleID: "c", Content: "one", CreatedAt: 2},
			{ID: "n2", ModuleID: "c", Content: "two", CreatedAt: 3},
		},
	)
	f.store.LoadLocal()

	if err := f.store.DeleteNote(context.Background(), "n1"); err != nil {
		t.Fatal(err)
	}

	// A fresh store over the same device storage must not bring the note back.
	reloaded := models.NewStore(f.local, f.remote)
	reloaded.LoadLocal()
	if _, err := reloaded.Note("n1"); err == nil {
		t.Error("deleted note resurrected from local storage")
	}
	if _, err := reloaded.Note("n2"); err != nil {
		t.Errorf("other local note lost: %v", err)
	}
}

// ---- local-only mode -------------------------------------------------------

func TestLocalOnlyPersistsToDevice(t *testing.T) {
	f := setupLocalStore(t)
	ctx := context.Background()
	if !f.store.LocalOnly() {
		t.Fatal("expected local-only store")
	}
	if got := f.store.Status().Cloud; got != models.StatusLocalOnly {
		t.Errorf("expected status local, got %s", got)
	}

	cat, err := f.store.CreateCategory(ctx, models.CategoryInput{Title: "notes"})
	if err != nil {
		t.Fatal(err)
	}
	note, err := f.store.CreateNote(ctx, models.NoteInput{ModuleID: cat.ID, Content: "local only"})
	if err != nil {
		t.Fatal(err)
	}
	if !f.store.HasLocalData() {
		t.Error("expected local data after writes")
	}

	reloaded := models.NewStore(f.local, nil)
	snap := reloaded.LoadLocal()
	if len(snap.Categories) != 1 || len(snap.Notes) != 1 || snap.Notes[0].ID != note.ID {
		t.Errorf("writes not persisted locally: %+v", snap)
	}

	if err := f.store.DeleteNote(ctx, note.ID); err != nil {
		t.Fatal(err)
	}
	again := models.NewStore(f.local, nil)
	if snap := again.LoadLocal(); len(snap.Notes) != 0 {
		t.Errorf("delete not persisted locally: %+v", snap.Notes)
	}
}

func TestLocalOnlyRejectsRemoteOperations(t *testing.T) {
	f := setupLocalStore(t)
	if err := f.store.StartSession(context.Background()); !errors.Is(err, models.ErrRemoteUnavailable) {
		t.Errorf("StartSession: expected ErrRemoteUnavailable, got %v", err)
	}
	if _, err := f.store.PrepareMigration(); !errors.Is(err, models.ErrRemoteUnavailable) {
		t.Errorf("PrepareMigration: expected ErrRemoteUnavailable, got %v", err)
	}
	if _, err := f.store.Migrate(context.Background(), "x"); !errors.Is(err, models.ErrRemoteUnavailable) {
		t.Errorf("Migrate: expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestLocalOnlySaveFailure(t *testing.T) {
	f := setupLocalStore(t)
	f.local.FailSaves(errors.New("disk full"))
	if _, err := f.store.CreateCategory(context.Background(), models.CategoryInput{Title: "x"}); err == nil {
		t.Fatal("expected error when the device cannot persist")
	}
	if len(f.store.Categories()) != 0 {
		t.Error("unpersisted category kept in memory")
	}
}

func TestLocalOnlyWritesOnlyTheChangedBlob(t *testing.T) {
	f := setupLocalStore(t)
	ctx := context.Background()

	cat, err := f.store.CreateCategory(ctx, models.CategoryInput{Title: "history"})
	if err != nil {
		t.Fatal(err)
	}
	modulesBefore := loadBlob(t, f, models.LocalKeyModules)

	// A broken modules blob must not block note writes.
	f.local.FailSavesFor(models.LocalKeyModules, errors.New("sector error"))
	note, err := f.store.CreateNote(ctx, models.NoteInput{Title: "treaties", Content: "westphalia", ModuleID: cat.ID})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if !bytes.Equal(loadBlob(t, f, models.LocalKeyModules), modulesBefore) {
		t.Error("note write touched the modules blob")
	}
	f.local.FailSavesFor(models.LocalKeyModules, nil)

	// A failed note blob write must leave the new category persisted and in memory.
	f.local.FailSavesFor(models.LocalKeyItems, errors.New("sector error"))
	second, err := f.store.CreateCategory(ctx, models.CategoryInput{Title: "geography"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	f.local.FailSavesFor(models.LocalKeyItems, nil)

	snap := models.NewStore(f.local, nil).LoadLocal()
	if len(snap.Categories) != 2 {
		t.Errorf("expected both categories persisted, got %+v", snap.Categories)
	}
	if len(snap.Notes) != 1 || snap.Notes[0].ID != note.ID {
		t.Errorf("expected the note persisted, got %+v", snap.Notes)
	}
	if _, err := f.store.Category(second.ID); err != nil {
		t.Errorf("persisted category missing from memory: %v", err)
	}
}
