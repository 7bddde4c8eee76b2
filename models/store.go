package models

import (
	"context"
	"sync"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// ============================================================================
// Store
//
// Store owns the in-memory categories and notes. It loads whatever the device
// holds locally, then merges every full snapshot the remote store delivers:
// remote records replace local ones with the same id, local-only records
// survive. Nothing is removed from memory by a snapshot; removal only happens
// through an explicit delete.
//
// A Store built without a remote store runs in local-only mode: every change
// is written straight to the device-local blobs.
// ============================================================================

const (
	defaultConfirmTTL      = 2 * time.Minute
	defaultAnalysisTimeout = 20 * time.Second
)

// Store is safe for concurrent use.
type Store struct {
	local           LocalStore
	remote          RemoteStore
	ids             *IDSource
	now             func() time.Time
	analyzer        Analyzer
	analysisTimeout time.Duration
	confirmTTL      time.Duration

	mu           sync.RWMutex
	categories   []Category
	notes        []Note
	hasLocalData bool
	status       CloudStatus
	lastErr      error
	lastSnapshot time.Time
	seen         map[Collection]bool
	synced       chan struct{}
	pending      *migrationTicket

	sessionMu sync.Mutex
	session   *session
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithAnalyzer enables AI-assisted note creation. Each analysis is bounded by timeout.
func WithAnalyzer(a Analyzer, timeout time.Duration) StoreOption {
	return func(s *Store) {
		s.analyzer = a
		if timeout > 0 {
			s.analysisTimeout = timeout
		}
	}
}

// WithIDSource replaces the id generator.
func WithIDSource(ids *IDSource) StoreOption {
	return func(s *Store) { s.ids = ids }
}

// WithConfirmationTTL sets how long a migration confirmation token stays valid.
func WithConfirmationTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.confirmTTL = ttl
		}
	}
}

// WithClock replaces the clock used for token expiry and status timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store over local storage and an optional remote store.
// Pass a nil remote for local-only mode.
func NewStore(local LocalStore, remote RemoteStore, opts ...StoreOption) *Store {
	s := &Store{
		local:           local,
		remote:          remote,
		ids:             NewIDSource(),
		now:             time.Now,
		analysisTimeout: defaultAnalysisTimeout,
		confirmTTL:      defaultConfirmTTL,
		seen:            make(map[Collection]bool, 2),
		synced:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if remote == nil {
		s.status = StatusLocalOnly
	} else {
		s.status = StatusOffline
	}
	return s
}

// LocalOnly reports whether the store runs without a remote store.
func (s *Store) LocalOnly() bool {
	return s.remote == nil
}

// LoadLocal reads both local blobs into memory and reports what was found.
// Missing or malformed blobs count as empty. Records already in memory keep
// precedence over local copies with the same id.
func (s *Store) LoadLocal() LocalSnapshot {
	cats := readLocal[Category](s.local, LocalKeyModules)
	notes := readLocal[Note](s.local, LocalKeyItems)
	for i := range notes {
		if notes[i].Tags == nil {
			notes[i].Tags = []string{}
		}
		if !notes[i].Kind.Valid() {
			notes[i].Kind = KindText
		}
	}

	snap := LocalSnapshot{
		Categories:   cloneCategories(cats),
		Notes:        cloneNotes(notes),
		HasLocalData: len(cats) > 0 || len(notes) > 0,
	}

	s.mu.Lock()
	s.categories = Merge(cats, s.categories)
	s.notes = Merge(notes, s.notes)
	s.hasLocalData = snap.HasLocalData
	s.mu.Unlock()

	logger.Info("Local data loaded",
		"categories", len(cats),
		"notes", len(notes),
		"has_local_data", snap.HasLocalData,
	)
	return snap
}

// ApplyResult summarizes one applied snapshot.
type ApplyResult struct {
	Collection Collection
	Received   int
	Total      int
	Shadowed   []ShadowedChange
}

// ApplySnapshot merges one subscription delivery into memory. An errored
// delivery only updates the status; the in-memory records are left as they are.
func (s *Store) ApplySnapshot(snap Snapshot) ApplyResult {
	res := ApplyResult{Collection: snap.Collection}

	if snap.Err != nil {
		s.mu.Lock()
		s.status = StatusError
		s.lastErr = snap.Err
		s.mu.Unlock()
		logger.LogErr(serr.Wrap(snap.Err, "remote subscription degraded"), "collection", string(snap.Collection))
		return res
	}

	var shadowed []shadowCandidate
	s.mu.Lock()
	switch snap.Collection {
	case CollectionModules:
		incoming := ProjectCategories(snap.Documents)
		shadowed = shadowedCategories(s.categories, incoming)
		s.categories = Merge(s.categories, incoming)
		res.Received, res.Total = len(incoming), len(s.categories)
	case CollectionItems:
		incoming := ProjectNotes(snap.Documents)
		shadowed = shadowedNotes(s.notes, incoming)
		s.notes = Merge(s.notes, incoming)
		res.Received, res.Total = len(incoming), len(s.notes)
	default:
		s.mu.Unlock()
		logger.Warn("Snapshot for unknown collection ignored", "collection", string(snap.Collection))
		return res
	}
	s.status = StatusConnected
	s.lastErr = nil
	s.lastSnapshot = s.now()
	s.markSeenLocked(snap.Collection)
	s.mu.Unlock()

	res.Shadowed = diffShadowed(shadowed)
	logShadowed(res.Shadowed)

	logger.Debug("Remote snapshot applied",
		"collection", string(snap.Collection),
		"received", res.Received,
		"total", res.Total,
	)
	return res
}

func (s *Store) markSeenLocked(coll Collection) {
	if s.seen[coll] {
		return
	}
	s.seen[coll] = true
	if s.seen[CollectionModules] && s.seen[CollectionItems] {
		close(s.synced)
	}
}

// Synced reports whether a snapshot of both collections has been applied.
func (s *Store) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncedLocked()
}

func (s *Store) syncedLocked() bool {
	return s.seen[CollectionModules] && s.seen[CollectionItems]
}

// resetSyncLocked forgets observed collections. A pending confirmation token
// is dropped with them.
func (s *Store) resetSyncLocked() {
	s.seen = make(map[Collection]bool, 2)
	s.synced = make(chan struct{})
	s.pending = nil
}

// WaitSynced blocks until both collections have been observed or ctx is done.
func (s *Store) WaitSynced(ctx context.Context) error {
	if s.remote == nil {
		return ErrRemoteUnavailable
	}
	s.mu.RLock()
	synced := s.synced
	s.mu.RUnlock()
	select {
	case <-synced:
		return nil
	case <-ctx.Done():
		return serr.Wrap(ctx.Err(), "waiting for remote snapshots")
	}
}

// ---- reads -----------------------------------------------------------------

// Categories returns a copy of all categories, oldest first.
func (s *Store) Categories() []Category {
	s.mu.RLock()
	out := cloneCategories(s.categories)
	s.mu.RUnlock()
	SortCategories(out)
	return out
}

// Category returns the category with id.
func (s *Store) Category(id string) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := findByID(s.categories, id); i >= 0 {
		return s.categories[i], nil
	}
	return Category{}, &NotFoundError{Kind: "category", ID: id}
}

// Notes returns copies of the notes matching f, newest first.
func (s *Store) Notes(f NoteFilter) []Note {
	s.mu.RLock()
	out := FilterNotes(s.notes, s.categories, f)
	s.mu.RUnlock()
	return cloneNotes(out)
}

// Note returns the note with id.
func (s *Store) Note(id string) (Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := findByID(s.notes, id); i >= 0 {
		return cloneNote(s.notes[i]), nil
	}
	return Note{}, &NotFoundError{Kind: "note", ID: id}
}

// NoteCounts returns the number of notes per category id.
func (s *Store) NoteCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CountByCategory(s.notes)
}

// HasLocalData reports whether local blobs still hold data not yet migrated.
func (s *Store) HasLocalData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasLocalData
}

// Status returns the current state for display.
func (s *Store) Status() StatusReport {
	s.sessionMu.Lock()
	active := s.session != nil
	s.sessionMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	report := StatusReport{
		Cloud:         s.status,
		SessionActive: active,
		Synced:        s.syncedLocked(),
		HasLocalData:  s.hasLocalData,
		Categories:    len(s.categories),
		Notes:         len(s.notes),
	}
	if !s.lastSnapshot.IsZero() {
		ts := s.lastSnapshot
		report.LastSnapshot = &ts
	}
	if s.lastErr != nil {
		report.LastError = s.lastErr.Error()
	}
	return report
}

func (s *Store) setStatus(status CloudStatus, err error) {
	s.mu.Lock()
	s.status = status
	s.lastErr = err
	s.mu.Unlock()
}

func cloneNote(n Note) Note {
	tags := make([]string, len(n.Tags))
	copy(tags, n.Tags)
	n.Tags = tags
	return n
}

func cloneNotes(notes []Note) []Note {
	out := make([]Note, len(notes))
	for i, n := range notes {
		out[i] = cloneNote(n)
	}
	return out
}

func cloneCategories(cats []Category) []Category {
	out := make([]Category, len(cats))
	copy(out, cats)
	return out
}
