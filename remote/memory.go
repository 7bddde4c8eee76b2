// Package remote provides implementations of the remote document store.
package remote

import (
	"context"
	"sort"
	"sync"

	"notevault/models"
)

// DeleteCall records one DeleteDocument invocation.
type DeleteCall struct {
	Collection models.Collection
	ID         string
}

// Memory is an in-process remote document store. It delivers full snapshots
// to subscribers after every change, commits batches atomically and can be
// told to fail writes, which makes it the backbone of store tests and of the
// offline demo mode.
type Memory struct {
	mu        sync.Mutex
	docs      map[models.Collection]map[string]models.Document
	subs      map[models.Collection]map[int]chan models.Snapshot
	nextSub   int
	batchErr  error
	deleteErr error
	batches   [][]models.DocumentWrite
	deletes   []DeleteCall
}

// NewMemory returns an empty remote store.
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[models.Collection]map[string]models.Document),
		subs: make(map[models.Collection]map[int]chan models.Snapshot),
	}
}

// Subscribe delivers the current collection immediately and again after every change.
func (m *Memory) Subscribe(ctx context.Context, coll models.Collection) (*models.Subscription, error) {
	ch := make(chan models.Snapshot, 1)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	if m.subs[coll] == nil {
		m.subs[coll] = make(map[int]chan models.Snapshot)
	}
	m.subs[coll][id] = ch
	deliver(ch, m.snapshotLocked(coll))
	m.mu.Unlock()

	done := make(chan struct{})
	stop := func() {
		close(done)
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[coll][id]; ok {
			delete(m.subs[coll], id)
			close(c)
		}
	}

	sub := models.NewSubscription(ch, stop)
	go func() {
		select {
		case <-ctx.Done():
			sub.Cancel()
		case <-done:
		}
	}()
	return sub, nil
}

// BatchWrite upserts every document or, when a failure is injected, none.
func (m *Memory) BatchWrite(ctx context.Context, writes []models.DocumentWrite) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil {
		return m.batchErr
	}

	touched := make(map[models.Collection]bool)
	for _, w := range writes {
		if m.docs[w.Collection] == nil {
			m.docs[w.Collection] = make(map[string]models.Document)
		}
		m.docs[w.Collection][w.Document.ID] = copyDocument(w.Document)
		touched[w.Collection] = true
	}
	recorded := make([]models.DocumentWrite, len(writes))
	copy(recorded, writes)
	m.batches = append(m.batches, recorded)

	for coll := range touched {
		m.notifyLocked(coll)
	}
	return nil
}

// DeleteDocument removes one document.
func (m *Memory) DeleteDocument(ctx context.Context, coll models.Collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.docs[coll], id)
	m.deletes = append(m.deletes, DeleteCall{Collection: coll, ID: id})
	m.notifyLocked(coll)
	return nil
}

// Put stores a document as if another client had written it.
func (m *Memory) Put(coll models.Collection, doc models.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[coll] == nil {
		m.docs[coll] = make(map[string]models.Document)
	}
	m.docs[coll][doc.ID] = copyDocument(doc)
	m.notifyLocked(coll)
}

// EmitError delivers a degraded-subscription snapshot to every subscriber of coll.
func (m *Memory) EmitError(coll models.Collection, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs[coll] {
		deliver(ch, models.Snapshot{Collection: coll, Err: err})
	}
}

// FailBatches makes BatchWrite fail with err. Pass nil to stop failing.
func (m *Memory) FailBatches(err error) {
	m.mu.Lock()
	m.batchErr = err
	m.mu.Unlock()
}

// FailDeletes makes DeleteDocument fail with err. Pass nil to stop failing.
func (m *Memory) FailDeletes(err error) {
	m.mu.Lock()
	m.deleteErr = err
	m.mu.Unlock()
}

// Batches returns every committed batch in order.
func (m *Memory) Batches() [][]models.DocumentWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]models.DocumentWrite, len(m.batches))
	copy(out, m.batches)
	return out
}

// Deletes returns every successful delete in order.
func (m *Memory) Deletes() []DeleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeleteCall, len(m.deletes))
	copy(out, m.deletes)
	return out
}

// Documents returns the documents of coll ordered by id.
func (m *Memory) Documents(coll models.Collection) []models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(coll).Documents
}

// Subscribers returns the number of live subscriptions on coll.
func (m *Memory) Subscribers(coll models.Collection) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[coll])
}

func (m *Memory) snapshotLocked(coll models.Collection) models.Snapshot {
	docs := make([]models.Document, 0, len(m.docs[coll]))
	for _, d := range m.docs[coll] {
		docs = append(docs, copyDocument(d))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return models.Snapshot{Collection: coll, Documents: docs}
}

func (m *Memory) notifyLocked(coll models.Collection) {
	if len(m.subs[coll]) == 0 {
		return
	}
	snap := m.snapshotLocked(coll)
	for _, ch := range m.subs[coll] {
		deliver(ch, snap)
	}
}

// deliver replaces an undelivered snapshot with the newer one. Each snapshot
// is the complete collection, so only the latest one matters.
func deliver(ch chan models.Snapshot, snap models.Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

func copyDocument(d models.Document) models.Document {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		if tags, ok := v.([]string); ok {
			v = append([]string(nil), tags...)
		}
		fields[k] = v
	}
	return models.Document{ID: d.ID, Fields: fields}
}
