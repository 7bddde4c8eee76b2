package models

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"sync"
)

// ============================================================================
// Remote Document Store contract
//
// The remote store holds two collections of documents keyed by id. Clients
// subscribe to a collection and receive the complete collection every time it
// changes. Writes are grouped into atomic batches; deletes are per document.
// ============================================================================

// Collection names a remote collection.
type Collection string

const (
	CollectionModules Collection = "modules"
	CollectionItems   Collection = "items"
)

// Document is one remote record. The document id is authoritative: a stale
// "id" field inside Fields is overwritten by ID during projection.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentWrite is a full-document upsert into a collection.
type DocumentWrite struct {
	Collection Collection
	Document   Document
}

// Snapshot is one delivery from a subscription. Either Documents holds the
// complete collection or Err reports that the subscription is degraded.
type Snapshot struct {
	Collection Collection
	Documents  []Document
	Err        error
}

// RemoteStore is the remote document store. Implementations live in the remote package.
type RemoteStore interface {
	// Subscribe starts delivering snapshots of coll until the subscription is cancelled
	// or ctx is done. The Snapshots channel is closed when delivery stops.
	Subscribe(ctx context.Context, coll Collection) (*Subscription, error)
	// BatchWrite upserts every write in one atomic commit. Either all documents
	// are stored or none are.
	BatchWrite(ctx context.Context, writes []DocumentWrite) error
	// DeleteDocument removes a single document. Deleting a missing document is not an error.
	DeleteDocument(ctx context.Context, coll Collection, id string) error
}

// Subscription is a live snapshot feed for one collection.
type Subscription struct {
	Snapshots <-chan Snapshot

	cancel func()
	once   sync.Once
}

// NewSubscription wraps a snapshot channel and the function that stops it.
func NewSubscription(snapshots <-chan Snapshot, cancel func()) *Subscription {
	return &Subscription{Snapshots: snapshots, cancel: cancel}
}

// Cancel stops delivery. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// ---- field projection ------------------------------------------------------
// Documents written by other clients may carry numbers as int32, int64 or
// float64 and arrays as []any, so projection is tolerant of representation.

func fieldString(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case json.Number:
		return v.String()
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func fieldInt64(fields map[string]any, key string) int64 {
	switch v := fields[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case float32:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func fieldStrings(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ProjectCategories converts the documents of the modules collection into categories.
func ProjectCategories(docs []Document) []Category {
	out := make([]Category, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			continue
		}
		out = append(out, categoryFromDocument(doc))
	}
	return out
}

// ProjectNotes converts the documents of the items collection into notes.
func ProjectNotes(docs []Document) []Note {
	out := make([]Note, 0, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			continue
		}
		out = append(out, noteFromDocument(doc))
	}
	return out
}
