package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// ============================================================================
// Migration
//
// Migration pushes the whole in-memory state to the remote store in one batch
// and clears the local blobs only after the remote commit is confirmed. A
// failed commit leaves local storage untouched, so no data is lost and the
// migration can simply be retried.
//
// Migration is a two-step operation. PrepareMigration issues a single-use
// confirmation token; Migrate refuses to run without a valid one.
// ============================================================================

type migrationTicket struct {
	token     string
	expiresAt time.Time
}

// MigrationPlan is shown to the user before confirming.
type MigrationPlan struct {
	Token        string    `json:"token"`
	Categories   int       `json:"categories"`
	Notes        int       `json:"notes"`
	HasLocalData bool      `json:"hasLocalData"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// MigrationResult reports a finished migration.
type MigrationResult struct {
	Committed        int  `json:"committed"`
	Categories       int  `json:"categories"`
	Notes            int  `json:"notes"`
	NothingToMigrate bool `json:"nothingToMigrate"`
}

// PrepareMigration issues a confirmation token for Migrate. Only the most
// recently issued token is valid.
func (s *Store) PrepareMigration() (MigrationPlan, error) {
	if s.remote == nil {
		return MigrationPlan{}, ErrRemoteUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.syncedLocked() {
		return MigrationPlan{}, ErrNotSynced
	}

	ticket := &migrationTicket{
		token:     uuid.NewString(),
		expiresAt: s.now().Add(s.confirmTTL),
	}
	s.pending = ticket

	return MigrationPlan{
		Token:        ticket.token,
		Categories:   len(s.categories),
		Notes:        len(s.notes),
		HasLocalData: s.hasLocalData,
		ExpiresAt:    ticket.expiresAt,
	}, nil
}

// Migrate commits every in-memory category and note to the remote store as
// one atomic batch, then clears the local blobs. token must come from the
// latest PrepareMigration call; it is consumed whether or not the migration
// succeeds.
func (s *Store) Migrate(ctx context.Context, token string) (MigrationResult, error) {
	if s.remote == nil {
		return MigrationResult{}, ErrRemoteUnavailable
	}

	s.mu.Lock()
	ticket := s.pending
	s.pending = nil
	if ticket == nil || token == "" || ticket.token != token || s.now().After(ticket.expiresAt) {
		s.mu.Unlock()
		return MigrationResult{}, ErrConfirmationRequired
	}
	cats := cloneCategories(s.categories)
	notes := cloneNotes(s.notes)
	s.mu.Unlock()

	res := MigrationResult{Categories: len(cats), Notes: len(notes)}
	if len(cats) == 0 && len(notes) == 0 {
		res.NothingToMigrate = true
		logger.Info("Nothing to migrate")
		return res, nil
	}

	writes := make([]DocumentWrite, 0, len(cats)+len(notes))
	for _, c := range cats {
		writes = append(writes, DocumentWrite{Collection: CollectionModules, Document: c.document()})
	}
	for _, n := range notes {
		writes = append(writes, DocumentWrite{Collection: CollectionItems, Document: n.document()})
	}

	if err := s.writeRemote(ctx, writes); err != nil {
		logger.LogErr(err, "migration commit failed, local data kept",
			"categories", len(cats), "notes", len(notes))
		return MigrationResult{}, &MigrationError{
			Phase:      MigrationPhaseCommit,
			Categories: len(cats),
			Notes:      len(notes),
			Err:        err,
		}
	}
	res.Committed = len(writes)

	for _, key := range []string{LocalKeyModules, LocalKeyItems} {
		if err := s.local.Clear(key); err != nil {
			logger.LogErr(err, "migration committed but local data could not be cleared", "key", key)
			return res, &MigrationError{
				Phase:      MigrationPhaseClearLocal,
				Categories: len(cats),
				Notes:      len(notes),
				Err:        serr.Wrap(err, "failed to clear "+key),
			}
		}
	}

	s.mu.Lock()
	s.hasLocalData = false
	s.mu.Unlock()

	logger.Info("Migration committed", "documents", res.Committed,
		"categories", res.Categories, "notes", res.Notes)
	return res, nil
}
