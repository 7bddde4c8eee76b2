package models

import (
	"context"
	"strings"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// ============================================================================
// Mutations
//
// With a remote store every change is written remotely first and applied to
// memory only after the write succeeds. In local-only mode the change is
// applied to memory and persisted to the local blobs.
// ============================================================================

// CreateCategory adds a category with an upper-cased title.
func (s *Store) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	if err := in.Validate(); err != nil {
		return Category{}, err
	}
	id, createdAt := s.ids.Next()
	cat := Category{
		ID:          id,
		Title:       NormalizeCategoryTitle(in.Title),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   createdAt,
	}

	if err := s.commitCategory(ctx, cat); err != nil {
		return Category{}, serr.Wrap(err, "failed to create category")
	}
	logger.Info("Category created", "id", cat.ID, "title", cat.Title)
	return cat, nil
}

// RenameCategory replaces a category title.
func (s *Store) RenameCategory(ctx context.Context, id string, in CategoryInput) (Category, error) {
	if err := in.Validate(); err != nil {
		return Category{}, err
	}
	cat, err := s.Category(id)
	if err != nil {
		return Category{}, err
	}
	cat.Title = NormalizeCategoryTitle(in.Title)
	if in.Description != "" {
		cat.Description = strings.TrimSpace(in.Description)
	}

	if err := s.commitCategory(ctx, cat); err != nil {
		return Category{}, serr.Wrap(err, "failed to update category")
	}
	logger.Info("Category updated", "id", cat.ID)
	return cat, nil
}

// CreateNote adds a note to an existing category. The title is derived from
// the content when none is given.
func (s *Store) CreateNote(ctx context.Context, in NoteInput) (Note, error) {
	if err := in.Validate(); err != nil {
		return Note{}, err
	}
	if _, err := s.Category(in.ModuleID); err != nil {
		return Note{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DeriveTitle(in.Content)
	}
	kind := in.Kind
	if kind == "" {
		kind = KindText
	}

	id, createdAt := s.ids.Next()
	note := Note{
		ID:        id,
		ModuleID:  in.ModuleID,
		Title:     title,
		Content:   strings.TrimSpace(in.Content),
		Tags:      NormalizeTags(in.Tags),
		Kind:      kind,
		CreatedAt: createdAt,
	}

	if err := s.commitNote(ctx, note); err != nil {
		return Note{}, serr.Wrap(err, "failed to create note")
	}
	logger.Info("Note created", "id", note.ID, "module_id", note.ModuleID)
	return cloneNote(note), nil
}

// UpdateNote applies the non-nil fields of upd.
func (s *Store) UpdateNote(ctx context.Context, id string, upd NoteUpdate) (Note, error) {
	note, err := s.Note(id)
	if err != nil {
		return Note{}, err
	}

	if upd.Content != nil {
		content := strings.TrimSpace(*upd.Content)
		if content == "" {
			return Note{}, newValidationError("content", "note content is required")
		}
		note.Content = content
	}
	if upd.Title != nil {
		note.Title = strings.TrimSpace(*upd.Title)
	}
	if note.Title == "" {
		note.Title = DeriveTitle(note.Content)
	}
	if upd.Tags != nil {
		note.Tags = NormalizeTags(*upd.Tags)
	}

	if err := s.commitNote(ctx, note); err != nil {
		return Note{}, serr.Wrap(err, "failed to update note")
	}
	logger.Info("Note updated", "id", note.ID)
	return cloneNote(note), nil
}

// DeleteCategory removes a single category. Notes that reference it are not
// touched and become uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.Category(id); err != nil {
		return err
	}
	if err := s.deleteRemote(ctx, CollectionModules, id); err != nil {
		return serr.Wrap(err, "failed to delete category")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories, _ = removeByID(s.categories, id)
	if err := s.dropLocalLocked(LocalKeyModules, id); err != nil {
		logger.LogErr(err, "category deleted but local copy remains", "id", id)
	}
	logger.Info("Category deleted", "id", id)
	return nil
}

// DeleteNote removes a single note.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	if _, err := s.Note(id); err != nil {
		return err
	}
	if err := s.deleteRemote(ctx, CollectionItems, id); err != nil {
		return serr.Wrap(err, "failed to delete note")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes, _ = removeByID(s.notes, id)
	if err := s.dropLocalLocked(LocalKeyItems, id); err != nil {
		logger.LogErr(err, "note deleted but local copy remains", "id", id)
	}
	logger.Info("Note deleted", "id", id)
	return nil
}

// ---- write paths -----------------------------------------------------------

func (s *Store) commitCategory(ctx context.Context, cat Category) error {
	if s.remote == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		cats := upsertByID(s.categories, cat)
		if err := writeLocal(s.local, LocalKeyModules, cats); err != nil {
			return err
		}
		s.categories = cats
		s.refreshHasLocalLocked()
		return nil
	}

	if err := s.writeRemote(ctx, []DocumentWrite{{Collection: CollectionModules, Document: cat.document()}}); err != nil {
		return err
	}
	s.mu.Lock()
	s.categories = upsertByID(s.categories, cat)
	s.mu.Unlock()
	return nil
}

func (s *Store) commitNote(ctx context.Context, note Note) error {
	if s.remote == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		notes := upsertByID(s.notes, note)
		if err := writeLocal(s.local, LocalKeyItems, notes); err != nil {
			return err
		}
		s.notes = notes
		s.refreshHasLocalLocked()
		return nil
	}

	if err := s.writeRemote(ctx, []DocumentWrite{{Collection: CollectionItems, Document: note.document()}}); err != nil {
		return err
	}
	s.mu.Lock()
	s.notes = upsertByID(s.notes, note)
	s.mu.Unlock()
	return nil
}

func (s *Store) writeRemote(ctx context.Context, writes []DocumentWrite) error {
	s.setStatus(StatusSyncing, nil)
	if err := s.remote.BatchWrite(ctx, writes); err != nil {
		s.setStatus(StatusError, err)
		return err
	}
	s.setStatus(StatusConnected, nil)
	return nil
}

// deleteRemote is a no-op in local-only mode.
func (s *Store) deleteRemote(ctx context.Context, coll Collection, id string) error {
	if s.remote == nil {
		return nil
	}
	s.setStatus(StatusSyncing, nil)
	if err := s.remote.DeleteDocument(ctx, coll, id); err != nil {
		s.setStatus(StatusError, err)
		return err
	}
	s.setStatus(StatusConnected, nil)
	return nil
}

// refreshHasLocalLocked recomputes hasLocalData in local-only mode, where
// memory and local storage hold the same data.
func (s *Store) refreshHasLocalLocked() {
	s.hasLocalData = len(s.categories) > 0 || len(s.notes) > 0
}

// dropLocalLocked removes id from the local blob under key so a deleted record
// is not resurrected by the next load.
func (s *Store) dropLocalLocked(key, id string) error {
	if s.remote == nil {
		defer s.refreshHasLocalLocked()
		if key == LocalKeyModules {
			return writeLocal(s.local, key, s.categories)
		}
		return writeLocal(s.local, key, s.notes)
	}
	if !s.hasLocalData {
		return nil
	}

	var err error
	switch key {
	case LocalKeyModules:
		cats, found := removeByID(readLocal[Category](s.local, key), id)
		if found {
			err = writeLocal(s.local, key, cats)
		}
	case LocalKeyItems:
		notes, found := removeByID(readLocal[Note](s.local, key), id)
		if found {
			err = writeLocal(s.local, key, notes)
		}
	}
	return err
}
