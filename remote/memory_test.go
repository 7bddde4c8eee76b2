package remote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"notevault/models"
	"notevault/remote"
)

func receive(t *testing.T, sub *models.Subscription) models.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots:
		if !ok {
			t.Fatal("subscription closed")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
	return models.Snapshot{}
}

func TestMemorySubscribeDeliversCurrentState(t *testing.T) {
	m := remote.NewMemory()
	m.Put(models.CollectionModules, models.Document{ID: "b", Fields: map[string]any{"title": "B"}})
	m.Put(models.CollectionModules, models.Document{ID: "a", Fields: map[string]any{"title": "A"}})

	sub, err := m.Subscribe(context.Background(), models.CollectionModules)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Cancel()

	snap := receive(t, sub)
	if len(snap.Documents) != 2 || snap.Documents[0].ID != "a" {
		t.Errorf("expected both documents ordered by id, got %+v", snap.Documents)
	}
}

func TestMemoryBatchWriteIsAtomic(t *testing.T) {
	m := remote.NewMemory()
	ctx := context.Background()
	writes := []models.DocumentWrite{
		{Collection: models.CollectionModules, Document: models.Document{ID: "c"}},
		{Collection: models.CollectionItems, Document: models.Document{ID: "n"}},
	}

	m.FailBatches(errors.New("rejected"))
	if err := m.BatchWrite(ctx, writes); err == nil {
		t.Fatal("expected injected failure")
	}
	if len(m.Documents(models.CollectionModules)) != 0 || len(m.Documents(models.CollectionItems)) != 0 {
		t.Fatal("failed batch left partial writes")
	}

	m.FailBatches(nil)
	if err := m.BatchWrite(ctx, writes); err != nil {
		t.Fatal(err)
	}
	if len(m.Batches()) != 1 {
		t.Errorf("expected one recorded batch, got %d", len(m.Batches()))
	}
}

func TestMemoryNotifiesAfterChanges(t *testing.T) {
	m := remote.NewMemory()
	sub, _ := m.Subscribe(context.Background(), models.CollectionItems)
	defer sub.Cancel()
	receive(t, sub)

	ctx := context.Background()
	_ = m.BatchWrite(ctx, []models.DocumentWrite{{Collection: models.CollectionItems, Document: models.Document{ID: "1"}}})
	_ = m.BatchWrite(ctx, []models.DocumentWrite{{Collection: models.CollectionItems, Document: models.Document{ID: "2"}}})

	// Undelivered snapshots are replaced, so the next one is the latest state.
	snap := receive(t, sub)
	if len(snap.Documents) != 2 {
		t.Errorf("expected latest snapshot with 2 documents, got %d", len(snap.Documents))
	}

	if err := m.DeleteDocument(ctx, models.CollectionItems, "1"); err != nil {
		t.Fatal(err)
	}
	snap = receive(t, sub)
	if len(snap.Documents) != 1 || snap.Documents[0].ID != "2" {
		t.Errorf("expected delete to be delivered, got %+v", snap.Documents)
	}
}

func TestMemoryEmitError(t *testing.T) {
	m := remote.NewMemory()
	sub, _ := m.Subscribe(context.Background(), models.CollectionItems)
	defer sub.Cancel()
	receive(t, sub)

	m.EmitError(models.CollectionItems, errors.New("denied"))
	if snap := receive(t, sub); snap.Err == nil {
		t.Error("expected an errored snapshot")
	}
}

func TestMemoryCancelReleasesSubscription(t *testing.T) {
	m := remote.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := m.Subscribe(ctx, models.CollectionModules)
	other, _ := m.Subscribe(context.Background(), models.CollectionModules)

	cancel()
	deadline := time.Now().Add(time.Second)
	for m.Subscribers(models.CollectionModules) != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := m.Subscribers(models.CollectionModules); n != 1 {
		t.Fatalf("expected 1 live subscription after ctx cancel, got %d", n)
	}

	sub.Cancel()
	other.Cancel()
	other.Cancel()
	if n := m.Subscribers(models.CollectionModules); n != 0 {
		t.Errorf("expected no subscriptions, got %d", n)
	}
}

func TestMemoryDocumentsAreCopies(t *testing.T) {
	m := remote.NewMemory()
	tags := []string{"a"}
	m.Put(models.CollectionItems, models.Document{ID: "n", Fields: map[string]any{"tags": tags}})
	tags[0] = "mutated"

	docs := m.Documents(models.CollectionItems)
	if got := docs[0].Fields["tags"].([]string); got[0] != "a" {
		t.Errorf("stored document shares memory with the caller: %v", got)
	}
}
